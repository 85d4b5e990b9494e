// Package curriculum loads the board/class/subject/chapter catalog that admin
// content is attached to.
package curriculum

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/p-n-ai/pai-content/internal/lesson"
)

// Catalog indexes chapters by their curriculum coordinates.
type Catalog struct {
	rootDir  string
	chapters map[lesson.Coordinates]lesson.Chapter
	subjects map[lesson.Coordinates][]lesson.Chapter
	mu       sync.RWMutex
}

// NewCatalog loads every syllabus YAML file under rootDir.
func NewCatalog(rootDir string) (*Catalog, error) {
	c := &Catalog{
		rootDir:  rootDir,
		chapters: make(map[lesson.Coordinates]lesson.Chapter),
		subjects: make(map[lesson.Coordinates][]lesson.Chapter),
	}

	if err := c.loadAll(); err != nil {
		return nil, fmt.Errorf("loading curriculum: %w", err)
	}

	slog.Info("curriculum loaded", "chapters", len(c.chapters))
	return c, nil
}

// Chapter resolves the chapter at coords. The stream is ignored below class 11.
func (c *Catalog) Chapter(coords lesson.Coordinates) (lesson.Chapter, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ch, ok := c.chapters[normalize(coords)]
	return ch, ok
}

// Chapters lists a subject's chapters in catalog order. coords.ChapterID is ignored.
func (c *Catalog) Chapters(coords lesson.Coordinates) []lesson.Chapter {
	coords.ChapterID = ""
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]lesson.Chapter(nil), c.subjects[normalize(coords)]...)
}

// Subjects lists the subject names known for a board and class (and stream).
func (c *Catalog) Subjects(board lesson.Board, class lesson.ClassLevel, stream lesson.Stream) []string {
	want := normalize(lesson.Coordinates{Board: board, ClassLevel: class, Stream: stream})

	c.mu.RLock()
	defer c.mu.RUnlock()
	var names []string
	for k := range c.subjects {
		if k.Board == want.Board && k.ClassLevel == want.ClassLevel && k.Stream == want.Stream {
			names = append(names, k.Subject)
		}
	}
	sort.Strings(names)
	return names
}

func (c *Catalog) loadAll() error {
	return filepath.Walk(c.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
			return c.loadSyllabus(path)
		}
		return nil
	})
}

func (c *Catalog) loadSyllabus(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var s Syllabus
	if err := yaml.Unmarshal(data, &s); err != nil {
		slog.Warn("skipping invalid syllabus YAML", "path", path, "error", err)
		return nil
	}
	if s.Board == "" || s.ClassLevel == "" {
		return nil // Not a syllabus file
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, subj := range s.Subjects {
		base := normalize(lesson.Coordinates{
			Board:      s.Board,
			ClassLevel: s.ClassLevel,
			Stream:     s.Stream,
			Subject:    subj.Name,
		})
		c.subjects[base] = append(c.subjects[base], subj.Chapters...)
		for _, ch := range subj.Chapters {
			if ch.ID == "" {
				slog.Warn("skipping chapter without id", "path", path, "subject", subj.Name)
				continue
			}
			k := base
			k.ChapterID = ch.ID
			c.chapters[k] = ch
		}
	}
	return nil
}

func normalize(c lesson.Coordinates) lesson.Coordinates {
	if !c.ClassLevel.HasStream() {
		c.Stream = ""
	}
	return c
}
