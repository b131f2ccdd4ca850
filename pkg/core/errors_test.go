package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		kind     ErrorKind
		sentinel error
	}{
		{"not found", NotFoundf("dataset %s not found", "ds-1"), KindNotFound, ErrNotFound},
		{"invalid argument", InvalidArgumentf("invalid aggregation method: %s", "median"), KindInvalidArgument, ErrInvalidArgument},
		{"operation failed", OperationFailedf("no matching data"), KindOperationFailed, ErrOperationFailed},
		{"wrapped", fmt.Errorf("merge: %w", NotFoundf("left dataset")), KindNotFound, ErrNotFound},
		{"plain error", errors.New("boom"), KindUnexpected, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.err))
			if tt.sentinel != nil {
				assert.ErrorIs(t, tt.err, tt.sentinel)
			}
		})
	}
}

func TestError_IsDoesNotCrossKinds(t *testing.T) {
	err := NotFoundf("missing")
	assert.NotErrorIs(t, err, ErrInvalidArgument)
	assert.NotErrorIs(t, err, ErrOperationFailed)
}

func TestWrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(KindOperationFailed, cause, "failed to append rows")

	assert.Equal(t, "failed to append rows: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrOperationFailed)
	assert.NoError(t, Wrap(KindNotFound, nil, "ignored"))
}

func TestValidateSchema(t *testing.T) {
	tests := []struct {
		name    string
		cols    []Column
		wantErr string
	}{
		{
			name: "dense and unique",
			cols: []Column{
				{Name: "city", DataType: DataTypeString, Order: 0},
				{Name: "sales", DataType: DataTypeDecimal, Order: 1},
			},
		},
		{
			name:    "duplicate name",
			cols:    []Column{{Name: "a", DataType: DataTypeString, Order: 0}, {Name: "a", DataType: DataTypeInt, Order: 1}},
			wantErr: "duplicate column name",
		},
		{
			name:    "gap in order",
			cols:    []Column{{Name: "a", DataType: DataTypeString, Order: 0}, {Name: "b", DataType: DataTypeInt, Order: 2}},
			wantErr: "expected 1",
		},
		{
			name:    "unknown type",
			cols:    []Column{{Name: "a", DataType: "uuid", Order: 0}},
			wantErr: "unknown data type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSchema(tt.cols)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
			assert.Equal(t, KindInvalidArgument, KindOf(err))
		})
	}
}

func TestParseMergeType(t *testing.T) {
	for in, want := range map[string]MergeType{
		"": MergeInner, "inner": MergeInner, "LEFT": MergeLeft, "Right": MergeRight, "full": MergeFull, "cross": MergeCross,
	} {
		got, err := ParseMergeType(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseMergeType("outer")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestParseDataType(t *testing.T) {
	dt, ok := ParseDataType(" DateTime ")
	assert.True(t, ok)
	assert.Equal(t, DataTypeDateTime, dt)

	_, ok = ParseDataType("varchar")
	assert.False(t, ok)
}
