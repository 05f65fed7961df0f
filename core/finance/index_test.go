package finance_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/masomo-finance/core/finance"
	"github.com/trezcool/masomo-finance/tests"
)

func TestBuildIndex(t *testing.T) {
	school := testutil.School()
	classes := append(school.Classes,
		testutil.Class("c5", "", "t2"),   // counted, but not in the name map
		testutil.Class("c6", "1B", "t2"), // same name: last one wins
	)
	idx := BuildIndex(school.Teachers, school.Students, classes)

	t.Run("lookups", func(t *testing.T) {
		tchr, ok := idx.Teacher("t1")
		assert.True(t, ok)
		assert.Equal(t, "Amani Kabila", tchr.DisplayName())

		_, ok = idx.Teacher("lol")
		assert.False(t, ok)

		std, ok := idx.Student("s3")
		assert.True(t, ok)
		assert.Equal(t, "Esther", std.FirstName)
	})

	t.Run("class counts", func(t *testing.T) {
		assert.Equal(t, 2, idx.ClassCount("t1"))
		assert.Equal(t, 3, idx.ClassCount("t2"))
		assert.Equal(t, 0, idx.ClassCount("lol"))
		assert.Equal(t, 5, idx.TotalClassCount(), "classes without teacher are not counted")
	})

	t.Run("class teacher", func(t *testing.T) {
		tests := []struct {
			name      string
			className string
			wantID    string
			wantOK    bool
		}{
			{name: "owned class", className: "1A", wantID: "t1", wantOK: true},
			{name: "duplicate name", className: "1B", wantID: "t2", wantOK: true},
			{name: "class without teacher", className: "3A"},
			{name: "unknown class", className: "9Z"},
			{name: "empty name", className: ""},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				id, ok := idx.ClassTeacher(tt.className)
				assert.Equal(t, tt.wantOK, ok)
				assert.Equal(t, tt.wantID, id)
			})
		}
	})

	t.Run("student teacher", func(t *testing.T) {
		tests := []struct {
			name      string
			studentID string
			wantID    string
			wantOK    bool
		}{
			{name: "resolved", studentID: "s1", wantID: "t1", wantOK: true},
			{name: "class without teacher", studentID: "s4"},
			{name: "student without class", studentID: "s5"},
			{name: "unknown student", studentID: "lol"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				id, ok := idx.StudentTeacher(tt.studentID)
				assert.Equal(t, tt.wantOK, ok)
				assert.Equal(t, tt.wantID, id)
			})
		}
	})
}

func TestBuildIndex_empty(t *testing.T) {
	idx := BuildIndex(nil, nil, nil)
	assert.Equal(t, 0, idx.TotalClassCount())
	_, ok := idx.StudentTeacher("s1")
	assert.False(t, ok)
}
