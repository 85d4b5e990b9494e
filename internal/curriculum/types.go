package curriculum

import "github.com/p-n-ai/pai-content/internal/lesson"

// Syllabus is one catalog file: the subjects of a class under a board, and
// for classes 11 and 12, a stream.
type Syllabus struct {
	Board      lesson.Board      `yaml:"board"`
	ClassLevel lesson.ClassLevel `yaml:"class"`
	Stream     lesson.Stream     `yaml:"stream"`
	Subjects   []Subject         `yaml:"subjects"`
}

// Subject lists the chapters taught under a subject name.
type Subject struct {
	Name     string           `yaml:"name"`
	Chapters []lesson.Chapter `yaml:"chapters"`
}
