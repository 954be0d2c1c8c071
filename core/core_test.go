package core

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOrderByClause(t *testing.T) {
	allowed := map[string]string{"amount": "i.amount", "due_date": "i.due_date"}
	def := DBOrdering{Field: "i.created_at"}

	tests := []struct {
		name      string
		orderings []DBOrdering
		want      string
	}{
		{name: "default", want: "i.created_at DESC"},
		{name: "unknown fields dropped", orderings: []DBOrdering{{Field: "1; DROP TABLE invoices"}}, want: "i.created_at DESC"},
		{
			name:      "mapped",
			orderings: []DBOrdering{{Field: "amount", Ascending: true}, {Field: "lol"}, {Field: "due_date"}},
			want:      "i.amount ASC, i.due_date DESC",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OrderByClause(tt.orderings, allowed, def))
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2024-06-10T00:00:00Z ")
	if assert.NoError(t, err) {
		assert.Equal(t, "2024-06-10", FormatDate(d))
	}
	_, err = ParseDate("10/06/2024")
	assert.Error(t, err)
}

func TestToday(t *testing.T) {
	karachi := time.FixedZone("PKT", 5*60*60)
	now := time.Date(2024, 6, 10, 2, 0, 0, 0, karachi) // 2024-06-09 21:00 UTC

	assert.Equal(t, "2024-06-09", Today(now))
	assert.Equal(t, "2024-06-12", DaysFrom(now, 3))
	assert.Equal(t, "2024-07-09", DaysFrom(now, 30))
}

func TestValidationError_Error(t *testing.T) {
	assert.Equal(t, "boom", NewValidationError(errors.New("boom")).Error())
	assert.Equal(t,
		"amount: must be positive; status: unknown",
		NewValidationError(nil, FieldError{"amount", "must be positive"}, FieldError{"status", "unknown"}).Error(),
	)
}

func TestNoticeError(t *testing.T) {
	err := NewNoticeError("No student found")
	assert.True(t, IsNotice(err))
	assert.False(t, IsNotice(errors.New("No student found")))
	assert.Equal(t, "No student found", err.Error())
}
