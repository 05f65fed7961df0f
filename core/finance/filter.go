package finance

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-finance/core"
)

var (
	// errors
	ErrInvalidSelector = errors.New("invalid selector")
)

// Selector narrows the collections to one teacher and/or one student.
// Each field is either All or an id.
type Selector struct {
	Teacher string `json:"teacher" query:"teacher" validate:"required,selector"`
	Student string `json:"student" query:"student" validate:"required,selector"`
}

func NewSelector(teacher, student string) Selector {
	sel := Selector{Teacher: teacher, Student: student}
	sel.Clean()
	return sel
}

// Clean trims both fields and defaults empty ones to All.
func (sel *Selector) Clean() {
	sel.Teacher = core.CleanString(sel.Teacher)
	sel.Student = core.CleanString(sel.Student)
	if sel.Teacher == "" {
		sel.Teacher = All
	}
	if sel.Student == "" {
		sel.Student = All
	}
}

func (sel Selector) Validate(validate *validator.Validate) error {
	if err := validate.Struct(sel); err != nil {
		return errors.Wrap(err, ErrInvalidSelector.Error())
	}
	return nil
}

func (sel Selector) AllTeachers() bool { return sel.Teacher == All }
func (sel Selector) AllStudents() bool { return sel.Student == All }

// FilterPayroll keeps the entries of the selected teacher.
func FilterPayroll(sel Selector, entries []PayrollEntry) []PayrollEntry {
	out := make([]PayrollEntry, 0, len(entries))
	for _, e := range entries {
		if sel.AllTeachers() || e.TeacherID == sel.Teacher {
			out = append(out, e)
		}
	}
	return out
}

// FilterPayments keeps the payments of the selected student that also belong to the selected teacher.
// A payment belongs to a teacher when its student's class is owned by that teacher;
// payments whose student cannot be resolved are dropped while a teacher is selected.
func FilterPayments(sel Selector, idx *Index, payments []Payment) []Payment {
	out := make([]Payment, 0, len(payments))
	for _, p := range payments {
		if !sel.AllStudents() && (!p.StudentID.Valid || p.StudentID.String != sel.Student) {
			continue
		}
		if !sel.AllTeachers() {
			if !p.StudentID.Valid {
				continue
			}
			if tid, ok := idx.StudentTeacher(p.StudentID.String); !ok || tid != sel.Teacher {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

// StudentOptions returns the students that can be selected under the teacher selector.
func StudentOptions(sel Selector, idx *Index, students []Student) []Student {
	out := make([]Student, 0, len(students))
	for _, s := range students {
		if sel.AllTeachers() {
			out = append(out, s)
			continue
		}
		if tid, ok := idx.resolveTeacher(s); ok && tid == sel.Teacher {
			out = append(out, s)
		}
	}
	return out
}
