package dashboard

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseRows(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr error
		wantLen int
	}{
		{name: "empty", text: "", wantErr: ErrEmptyJSON},
		{name: "whitespace", text: "  \n\t", wantErr: ErrEmptyJSON},
		{name: "object", text: `{"a":1}`, wantErr: ErrNotArray},
		{name: "scalar", text: `42`, wantErr: ErrNotArray},
		{name: "broken", text: `[{"a":`, wantErr: ErrInvalidJSON},
		{name: "trailing", text: `[] []`, wantErr: ErrInvalidJSON},
		{name: "empty array", text: `[]`, wantLen: 0},
		{name: "rows", text: `[{"vendor":"acme"},{"vendor":"globex"}]`, wantLen: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := ParseRows(tt.text)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, rows)
			assert.Len(t, rows, tt.wantLen)
		})
	}
}

func TestParseRows_Messages(t *testing.T) {
	_, err := ParseRows(`{"a":1}`)
	assert.Equal(t, "JSON must be an array of rows", ErrorNotice(err).Message)

	_, err = ParseRows(`{nope`)
	msg := ErrorNotice(err).Message
	assert.True(t, strings.HasPrefix(msg, "Invalid JSON: "), msg)
	assert.Greater(t, len(msg), len("Invalid JSON: "))
}

func TestCreator_SubmitJSON(t *testing.T) {
	repo := newFakeRepo()
	c := NewCreator(repo)

	_, err := c.SubmitJSON(context.Background(), `{"a":1}`, true)
	assert.ErrorIs(t, err, ErrNotArray)
	assert.Empty(t, repo.rowsCalls, "invalid input must not reach the backend")

	id, err := c.SubmitJSON(context.Background(), `[{"vendor":"acme","amount":10}]`, true)
	require.NoError(t, err)
	assert.Equal(t, "r_new", id)
	require.Len(t, repo.rowsCalls, 1)
	require.Len(t, repo.rowsCalls[0], 1)
	assert.Equal(t, []string{"vendor", "amount"}, repo.rowsCalls[0][0].Keys())
	assert.Equal(t, []bool{true}, repo.explains)
}

func TestCreator_SubmitJSON_BackendError(t *testing.T) {
	repo := newFakeRepo()
	repo.createErr = errors.New("POST /run: 500 Internal Server Error")

	_, err := NewCreator(repo).SubmitJSON(context.Background(), `[]`, false)
	assert.EqualError(t, err, "POST /run: 500 Internal Server Error")
}

func TestCreator_SubmitFile(t *testing.T) {
	repo := newFakeRepo()
	c := NewCreator(repo)
	ctx := context.Background()

	_, err := c.SubmitFile(ctx, "", -1, nil, false)
	assert.ErrorIs(t, err, ErrNoFile)

	_, err = c.SubmitFile(ctx, "empty.csv", 0, strings.NewReader(""), false)
	assert.ErrorIs(t, err, ErrEmptyFile)
	assert.Empty(t, repo.fileCalls)

	id, err := c.SubmitFile(ctx, "ledger.csv", 9, strings.NewReader("vendor\nx\n"), true)
	require.NoError(t, err)
	assert.Equal(t, "r_new", id)
	assert.Equal(t, []string{"ledger.csv"}, repo.fileCalls)
	assert.Equal(t, []string{"vendor\nx\n"}, repo.fileBodies)
}

func TestCreator_WithLoggerKeepsOriginal(t *testing.T) {
	c := NewCreator(newFakeRepo())
	assert.Same(t, c, c.WithLogger(nil))
	assert.NotSame(t, c, c.WithLogger(nil).WithLogger(zap.NewNop()))
}

