// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package provision

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubConn records calls and fails statements according to failFor.
type stubConn struct {
	failFor     func(i int, sql string) error
	commitErr   error
	rollbackErr error
	panicAt     int

	ran       []string
	commits   int
	rollbacks int
	closes    int
}

func (s *stubConn) Run(_ context.Context, sql string) error {
	i := len(s.ran)
	s.ran = append(s.ran, sql)
	if s.panicAt > 0 && i+1 == s.panicAt {
		panic("driver exploded")
	}
	if s.failFor != nil {
		return s.failFor(i, sql)
	}
	return nil
}

func (s *stubConn) Commit(context.Context) error {
	s.commits++
	return s.commitErr
}

func (s *stubConn) Rollback(context.Context) error {
	s.rollbacks++
	return s.rollbackErr
}

func (s *stubConn) Close(context.Context) error {
	s.closes++
	return nil
}

var batch = []string{
	"CREATE TABLE a (id int)",
	"CREATE TABLE b (id int)",
	"CREATE INDEX a_id ON a (id)",
	"INSERT INTO a VALUES (1)",
}

func TestExecute_AllAlreadyExist(t *testing.T) {
	conn := &stubConn{failFor: func(int, string) error { return errors.New("relation already exists") }}

	res := Execute(context.Background(), conn, batch)

	assert.True(t, res.Success)
	assert.Equal(t, 0, res.Executed)
	assert.Equal(t, len(batch), res.Ignored)
	assert.Empty(t, res.Failures)
	assert.Equal(t, 1, conn.commits)
	assert.Equal(t, 0, conn.rollbacks)
	assert.Equal(t, 0, conn.closes)
	assert.NoError(t, res.Err)
}

func TestExecute_OneReportedFailure(t *testing.T) {
	conn := &stubConn{failFor: func(i int, _ string) error {
		if i == 2 {
			return errors.New(`ERROR: syntax error at or near "INDX"`)
		}
		return nil
	}}

	res := Execute(context.Background(), conn, batch)

	require.Len(t, res.Failures, 1)
	assert.Equal(t, 2, res.Failures[0].Index)
	assert.Equal(t, batch[2], res.Failures[0].Statement)
	assert.Equal(t, Reported, res.Failures[0].Kind)
	assert.Contains(t, res.Failures[0].Message(), "syntax error")
	assert.Equal(t, len(batch)-1, res.Executed)
	assert.True(t, res.Success)
	assert.False(t, res.Clean())
	assert.Equal(t, batch, conn.ran, "execution continues past a reported failure")
	assert.Equal(t, 1, conn.commits)
}

func TestExecute_CommitFails(t *testing.T) {
	conn := &stubConn{commitErr: errors.New("connection reset by peer")}

	res := Execute(context.Background(), conn, batch)

	assert.False(t, res.Success)
	assert.Equal(t, 1, conn.rollbacks)
	assert.Equal(t, len(batch), res.Executed)
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "commit failed")
}

func TestExecute_RollbackErrorIsRecorded(t *testing.T) {
	conn := &stubConn{
		commitErr:   errors.New("commit boom"),
		rollbackErr: errors.New("rollback boom"),
	}

	res := Execute(context.Background(), conn, batch)

	assert.False(t, res.Success)
	assert.Equal(t, 1, conn.rollbacks)
	assert.Contains(t, res.Err.Error(), "commit boom")
	assert.Contains(t, res.Err.Error(), "rollback boom")
}

func TestExecute_FatalAdapterErrorStopsBatch(t *testing.T) {
	conn := &stubConn{failFor: func(i int, _ string) error {
		if i == 1 {
			return Fatal(errors.New("conn closed"))
		}
		return nil
	}}

	res := Execute(context.Background(), conn, batch)

	assert.False(t, res.Success)
	assert.Len(t, conn.ran, 2)
	assert.Equal(t, 0, conn.commits)
	assert.Equal(t, 1, conn.rollbacks)
	assert.ErrorIs(t, res.Err, ErrFatal)
}

func TestExecute_PanicRollsBack(t *testing.T) {
	conn := &stubConn{panicAt: 3}

	res := Execute(context.Background(), conn, batch)

	assert.False(t, res.Success)
	assert.Equal(t, 0, conn.commits)
	assert.Equal(t, 1, conn.rollbacks)
	assert.Equal(t, 2, res.Executed)
	assert.Contains(t, res.Err.Error(), "driver exploded")
}

func TestExecute_CancelledContextRollsBack(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	conn := &stubConn{failFor: func(i int, _ string) error {
		if i == 0 {
			cancel()
		}
		return nil
	}}

	res := Execute(ctx, conn, batch)

	assert.False(t, res.Success)
	assert.Len(t, conn.ran, 1)
	assert.Equal(t, 0, conn.commits)
	assert.Equal(t, 1, conn.rollbacks)
	assert.ErrorIs(t, res.Err, context.Canceled)
}

func TestExecute_EmptyBatchCommits(t *testing.T) {
	conn := &stubConn{}

	res := Execute(context.Background(), conn, nil)

	assert.True(t, res.Success)
	assert.True(t, res.Clean())
	assert.Equal(t, 1, conn.commits)
}

func TestExecute_ObserverSeesEveryStatementInOrder(t *testing.T) {
	conn := &stubConn{failFor: func(i int, _ string) error {
		switch i {
		case 1:
			return errors.New("duplicate key value violates unique constraint")
		case 3:
			return errors.New("permission denied")
		}
		return nil
	}}

	var seen []Outcome
	res := Execute(context.Background(), conn, batch, WithObserver(func(o Outcome) { seen = append(seen, o) }))

	require.Len(t, seen, len(batch))
	kinds := make([]Kind, len(seen))
	for i, o := range seen {
		assert.Equal(t, i, o.Index)
		kinds[i] = o.Kind
	}
	assert.Equal(t, []Kind{Success, Ignored, Success, Reported}, kinds)
	assert.Equal(t, seen, res.Outcomes)
	assert.Equal(t, 2, res.Executed)
	assert.Equal(t, 1, res.Ignored)
}

func TestExecute_CustomClassifier(t *testing.T) {
	conn := &stubConn{failFor: func(int, string) error { return errors.New("whatever") }}
	everything := ClassifierFunc(func(error) Kind { return Ignored })

	res := Execute(context.Background(), conn, batch, WithClassifier(everything))

	assert.Equal(t, len(batch), res.Ignored)
	assert.Empty(t, res.Failures)
}

func TestExecute_ClassifierCannotForgeSuccess(t *testing.T) {
	conn := &stubConn{failFor: func(int, string) error { return errors.New("nope") }}
	liar := ClassifierFunc(func(error) Kind { return Success })

	res := Execute(context.Background(), conn, batch[:1], WithClassifier(liar))

	require.Len(t, res.Failures, 1)
	assert.Equal(t, 0, res.Executed)
}

// idempotentConn simulates a database that remembers created objects.
type idempotentConn struct {
	objects map[string]bool
}

func (c *idempotentConn) Run(_ context.Context, sql string) error {
	if c.objects[sql] {
		return fmt.Errorf("relation for %q already exists", sql)
	}
	c.objects[sql] = true
	return nil
}

func (c *idempotentConn) Commit(context.Context) error   { return nil }
func (c *idempotentConn) Rollback(context.Context) error { return nil }
func (c *idempotentConn) Close(context.Context) error    { return nil }

func TestExecute_SecondRunIsIdempotent(t *testing.T) {
	conn := &idempotentConn{objects: map[string]bool{}}

	first := Execute(context.Background(), conn, batch)
	second := Execute(context.Background(), conn, batch)

	assert.True(t, first.Success)
	assert.Equal(t, len(batch), first.Executed)
	assert.True(t, second.Success)
	assert.Equal(t, len(batch), second.Ignored)
	assert.Empty(t, second.Failures)
}
