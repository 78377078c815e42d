// Copyright 2021 The reqflow Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package cancel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource(t *testing.T) {
	t.Run("active", func(t *testing.T) {
		token, _ := Source()
		require.NotNil(t, token)
		assert.False(t, token.Requested())
		assert.Nil(t, token.Reason())
		assert.NoError(t, token.Err())
		select {
		case <-token.Done():
			t.Fatal("active token must not be done")
		default:
		}
	})
	t.Run("independent", func(t *testing.T) {
		t1, c1 := Source()
		t2, _ := Source()
		c1("foo")
		assert.True(t, t1.Requested())
		assert.False(t, t2.Requested())
	})
}

func TestToken_Cancel(t *testing.T) {
	t.Run("first call wins", func(t *testing.T) {
		token, cancelFunc := Source()
		cancelFunc("first")
		r := token.Reason()
		require.NotNil(t, r)
		assert.Equal(t, "first", r.Message)

		cancelFunc("second")
		cancelFunc("")
		assert.Same(t, r, token.Reason())
		assert.Equal(t, "first", token.Reason().Message)
	})
	t.Run("done closed", func(t *testing.T) {
		token, cancelFunc := Source()
		cancelFunc("foo")
		select {
		case <-token.Done():
		case <-time.After(time.Second):
			t.Fatal("done channel not closed")
		}
	})
	t.Run("Err", func(t *testing.T) {
		token, cancelFunc := Source()
		cancelFunc("ham")
		err := token.Err()
		require.Error(t, err)
		assert.Same(t, token.Reason(), err)
		assert.Same(t, err, token.Err())
		assert.EqualError(t, err, "ham")
	})
	t.Run("concurrent", func(t *testing.T) {
		token, cancelFunc := Source()
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				cancelFunc(fmt.Sprintf("msg%d", i))
			}(i)
		}
		wg.Wait()
		r := token.Reason()
		require.NotNil(t, r)
		cancelFunc("late")
		assert.Same(t, r, token.Reason())
	})
}

func TestToken_Bind(t *testing.T) {
	t.Run("cancelled later", func(t *testing.T) {
		token, cancelFunc := Source()
		ctx, stop := token.Bind(context.Background())
		defer stop()
		assert.NoError(t, ctx.Err())
		cancelFunc("stop")
		select {
		case <-ctx.Done():
		case <-time.After(time.Second):
			t.Fatal("bound context not cancelled")
		}
		assert.Equal(t, context.Canceled, ctx.Err())
	})
	t.Run("already cancelled", func(t *testing.T) {
		token, cancelFunc := Source()
		cancelFunc("")
		ctx, stop := token.Bind(context.Background())
		defer stop()
		assert.Equal(t, context.Canceled, ctx.Err())
	})
	t.Run("parent done", func(t *testing.T) {
		token, _ := Source()
		parent, parentCancel := context.WithCancel(context.Background())
		ctx, stop := token.Bind(parent)
		defer stop()
		parentCancel()
		<-ctx.Done()
		assert.False(t, token.Requested())
	})
}

func TestCancel(t *testing.T) {
	assert.EqualError(t, &Cancel{}, "reqflow/cancel: request cancelled")
	assert.EqualError(t, &Cancel{Message: "foo"}, "foo")
	assert.True(t, errors.Is(&Cancel{}, context.Canceled))
	assert.False(t, errors.Is(&Cancel{}, context.DeadlineExceeded))
}

func TestIsCancel(t *testing.T) {
	assert.False(t, IsCancel(nil))
	assert.False(t, IsCancel(errors.New("foo")))
	assert.False(t, IsCancel(context.Canceled))
	assert.True(t, IsCancel(&Cancel{}))
	assert.True(t, IsCancel(fmt.Errorf("wrapped: %w", &Cancel{Message: "bar"})))
}
