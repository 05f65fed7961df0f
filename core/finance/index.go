package finance

// Index holds the lookups of one aggregation pass.
// It is built once per pass and never mutated afterwards.
type Index struct {
	teachers     map[string]Teacher
	students     map[string]Student
	classTeacher map[string]string // class name -> teacher id
	classCounts  map[string]int    // teacher id -> number of classes owned
}

// BuildIndex builds the lookups from the raw collections; inputs are left untouched.
// Classes without a name or a teacher are not part of the class -> teacher map;
// when two classes share a name the last one wins.
func BuildIndex(teachers []Teacher, students []Student, classes []Class) *Index {
	idx := &Index{
		teachers:     make(map[string]Teacher, len(teachers)),
		students:     make(map[string]Student, len(students)),
		classTeacher: make(map[string]string, len(classes)),
		classCounts:  make(map[string]int),
	}
	for _, t := range teachers {
		idx.teachers[t.ID] = t
	}
	for _, s := range students {
		idx.students[s.ID] = s
	}
	for _, c := range classes {
		if !c.TeacherID.Valid || c.TeacherID.String == "" {
			continue
		}
		idx.classCounts[c.TeacherID.String]++
		if c.Name != "" {
			idx.classTeacher[c.Name] = c.TeacherID.String
		}
	}
	return idx
}

func (idx *Index) Teacher(id string) (Teacher, bool) {
	t, ok := idx.teachers[id]
	return t, ok
}

func (idx *Index) Student(id string) (Student, bool) {
	s, ok := idx.students[id]
	return s, ok
}

// ClassTeacher returns the id of the teacher owning the class named `name`.
func (idx *Index) ClassTeacher(name string) (string, bool) {
	id, ok := idx.classTeacher[name]
	return id, ok
}

// ClassCount returns the number of classes owned by a teacher.
func (idx *Index) ClassCount(teacherID string) int {
	return idx.classCounts[teacherID]
}

// TotalClassCount returns the number of classes owned across all teachers.
func (idx *Index) TotalClassCount() int {
	var n int
	for _, c := range idx.classCounts {
		n += c
	}
	return n
}

// StudentTeacher resolves a student to a teacher through its class name.
func (idx *Index) StudentTeacher(studentID string) (string, bool) {
	s, ok := idx.students[studentID]
	if !ok {
		return "", false
	}
	return idx.resolveTeacher(s)
}

func (idx *Index) resolveTeacher(s Student) (string, bool) {
	if !s.ClassName.Valid || s.ClassName.String == "" {
		return "", false
	}
	return idx.ClassTeacher(s.ClassName.String)
}

func (idx *Index) teacherName(id string) string {
	if t, ok := idx.teachers[id]; ok {
		if name := t.DisplayName(); name != "" {
			return name
		}
	}
	return unknownName
}

func (idx *Index) studentName(id string) string {
	if s, ok := idx.students[id]; ok {
		if name := s.DisplayName(); name != "" {
			return name
		}
	}
	return unknownName
}
