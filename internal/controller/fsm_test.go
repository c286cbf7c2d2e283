package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransition_FullLifecycle(t *testing.T) {
	s := StateIdle

	s, err := Transition(s, EventOpen)
	assert.NoError(t, err)
	assert.Equal(t, StateOpened, s)

	s, err = Transition(s, EventStart)
	assert.NoError(t, err)
	assert.Equal(t, StateRunning, s)

	s, err = Transition(s, EventStop)
	assert.NoError(t, err)
	assert.Equal(t, StateOpened, s)

	s, err = Transition(s, EventClose)
	assert.NoError(t, err)
	assert.Equal(t, StateClosed, s)
}

func TestTransition_RejectsInvalidEvent(t *testing.T) {
	_, err := Transition(StateIdle, EventStart)
	assert.Error(t, err)

	_, err = Transition(StateRunning, EventOpen)
	assert.Error(t, err)

	_, err = Transition(StateClosed, EventOpen)
	assert.Error(t, err)
}

func TestTransition_OpenedCanReopenToClose(t *testing.T) {
	s, err := Transition(StateOpened, EventClose)
	assert.NoError(t, err)
	assert.Equal(t, StateClosed, s)
}
