package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAwaitStop(t *testing.T) {
	t.Run("serve failure is returned", func(t *testing.T) {
		errChan := make(chan error, 1)
		errChan <- errors.New("http server: address already in use")

		err := awaitStop(context.Background(), errChan)
		assert.EqualError(t, err, "http server: address already in use")
	})

	t.Run("cancelled context is a clean stop", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.NoError(t, awaitStop(ctx, make(chan error)))
	})
}
