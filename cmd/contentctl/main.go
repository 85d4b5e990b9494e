// Command contentctl manages chapter content from the shell: print storage
// keys, inspect saved records, and save PDF links, playlists or MCQ sheets.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/p-n-ai/pai-content/internal/admin"
	"github.com/p-n-ai/pai-content/internal/curriculum"
	"github.com/p-n-ai/pai-content/internal/lesson"
	"github.com/p-n-ai/pai-content/internal/platform/config"
	"github.com/p-n-ai/pai-content/internal/spreadsheet"
	"github.com/p-n-ai/pai-content/internal/store"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

const usage = `usage: contentctl <command> [flags]

commands:
  key         print the storage key for a chapter and content type
  show        print the saved record for a chapter and content type
  save-pdf    save a PDF or notes link
  save-video  save a video playlist (repeat -link, up to 10)
  import-mcq  save an MCQ set from a .tsv/.txt paste or an .xlsx workbook
  clear       delete the saved content of a tab (PDF, VIDEO, MCQ)

chapter flags: -board -class [-stream] -subject -chapter [-title]
`

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// links collects repeated -link flags.
type links []string

func (l *links) String() string { return strings.Join(*l, ",") }

func (l *links) Set(v string) error {
	*l = append(*l, v)
	return nil
}

type command struct {
	name   string
	fs     *flag.FlagSet
	coords lesson.Coordinates
	board  string
	class  string
	stream string
	title  string
	typ    string
	url    string
	links  links
	file   string
	sheet  string
	tab    string
}

func newCommand(name string, stderr io.Writer) *command {
	c := &command{name: name, fs: flag.NewFlagSet(name, flag.ContinueOnError)}
	c.fs.SetOutput(stderr)
	c.fs.StringVar(&c.board, "board", "", "curriculum board, e.g. CBSE")
	c.fs.StringVar(&c.class, "class", "", "class level, e.g. 10")
	c.fs.StringVar(&c.stream, "stream", "", "stream for classes 11 and 12")
	c.fs.StringVar(&c.coords.Subject, "subject", "", "subject name")
	c.fs.StringVar(&c.coords.ChapterID, "chapter", "", "chapter id")
	c.fs.StringVar(&c.title, "title", "", "chapter title (defaults to the curriculum catalog)")

	switch name {
	case "key", "show":
		c.fs.StringVar(&c.typ, "type", "", "content type")
	case "save-pdf":
		c.fs.StringVar(&c.typ, "type", string(lesson.PDFNotes), "PDF_NOTES, NOTES_PREMIUM or NOTES_SIMPLE")
		c.fs.StringVar(&c.url, "url", "", "document URL")
	case "save-video":
		c.fs.Var(&c.links, "link", "video URL (repeatable)")
	case "import-mcq":
		c.fs.StringVar(&c.file, "file", "", "sheet file (.tsv, .txt or .xlsx; - for stdin)")
		c.fs.StringVar(&c.sheet, "sheet", "", "worksheet name for .xlsx (default first sheet)")
	case "clear":
		c.fs.StringVar(&c.tab, "tab", "", "PDF, VIDEO or MCQ")
	}
	return c
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "help" {
		fmt.Fprint(stderr, usage)
		return exitUsage
	}

	switch args[0] {
	case "key", "show", "save-pdf", "save-video", "import-mcq", "clear":
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return exitUsage
	}

	cmd := newCommand(args[0], stderr)
	if err := cmd.fs.Parse(args[1:]); err != nil {
		return exitUsage
	}
	if err := cmd.validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	if cmd.name == "key" {
		fmt.Fprintln(stdout, cmd.coords.Key(lesson.ContentType(cmd.typ)))
		return exitOK
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return exitFailure
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	st, err := store.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "open store: %v\n", err)
		return exitFailure
	}
	defer st.Close()

	if err := cmd.exec(st, cfg.CurriculumPath, stdout, stderr); err != nil {
		fmt.Fprintln(stderr, err)
		if lesson.IsValidation(err) {
			return exitUsage
		}
		return exitFailure
	}
	return exitOK
}

func (c *command) validate() error {
	c.coords.Board = lesson.Board(c.board)
	c.coords.ClassLevel = lesson.ClassLevel(c.class)
	c.coords.Stream = lesson.Stream(c.stream)

	missing := []string{}
	if c.coords.Board == "" {
		missing = append(missing, "-board")
	}
	if c.coords.ClassLevel == "" {
		missing = append(missing, "-class")
	}
	if c.coords.Subject == "" {
		missing = append(missing, "-subject")
	}
	if c.coords.ChapterID == "" {
		missing = append(missing, "-chapter")
	}
	switch c.name {
	case "key", "show":
		if !lesson.ContentType(c.typ).Valid() {
			return fmt.Errorf("%s: -type must be one of NOTES_SIMPLE, NOTES_PREMIUM, PDF_NOTES, VIDEO_LINK, MCQ_SIMPLE", c.name)
		}
	case "import-mcq":
		if c.file == "" {
			missing = append(missing, "-file")
		}
	case "clear":
		if _, err := admin.ParseTab(c.tab); err != nil {
			return fmt.Errorf("%s: -tab must be PDF, VIDEO or MCQ", c.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s: missing %s", c.name, strings.Join(missing, ", "))
	}
	return nil
}

func (c *command) exec(st store.Store, curriculumPath string, stdout, stderr io.Writer) error {
	if c.name == "show" {
		return c.show(st, stdout)
	}

	chapter, err := c.chapter(curriculumPath)
	if err != nil {
		return err
	}
	sess, err := admin.NewSession(st, nil, c.coords, chapter)
	if err != nil {
		return err
	}

	var rec lesson.Record
	switch c.name {
	case "save-pdf":
		t := lesson.ContentType(c.typ)
		if !t.IsPDF() {
			return &lesson.ValidationError{Field: "type", Message: "-type must be PDF_NOTES, NOTES_PREMIUM or NOTES_SIMPLE"}
		}
		sess.PDF = sess.PDF.SelectType(t).SetURL(c.url)
		rec, err = sess.SavePDF()
	case "save-video":
		if len(c.links) > lesson.MaxVideoLinks {
			return &lesson.ValidationError{Field: "links", Message: "A playlist holds at most 10 links"}
		}
		sess.Video = sess.Video.SetLinks(c.links)
		rec, err = sess.SaveVideo()
	case "import-mcq":
		raw, rerr := readSheet(c.file, c.sheet)
		if rerr != nil {
			return rerr
		}
		sess.MCQ = sess.MCQ.SetRaw(raw)
		var report lesson.SheetReport
		rec, report, err = sess.SaveMCQ()
		for _, w := range report.Warnings {
			fmt.Fprintf(stderr, "row %d: %s\n", w.Row, w.Reason)
		}
	case "clear":
		tab, _ := admin.ParseTab(c.tab)
		if err := sess.Clear(tab); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "cleared %s\n", tab)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "saved %s (%s)\n", c.coords.Key(rec.Type), rec.ID)
	return nil
}

func (c *command) show(st store.Store, stdout io.Writer) error {
	key := c.coords.Key(lesson.ContentType(c.typ))
	text, ok, err := st.Get(key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("nothing saved under %s", key)
	}
	rec, ok := lesson.Decode(text)
	if !ok {
		return fmt.Errorf("malformed record under %s", key)
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}

// chapter resolves the record title from -title or the curriculum catalog.
func (c *command) chapter(curriculumPath string) (lesson.Chapter, error) {
	if c.title != "" {
		return lesson.Chapter{ID: c.coords.ChapterID, Title: c.title}, nil
	}
	catalog, err := curriculum.NewCatalog(curriculumPath)
	if err != nil {
		return lesson.Chapter{}, err
	}
	ch, ok := catalog.Chapter(c.coords)
	if !ok {
		return lesson.Chapter{}, errors.New("chapter not in curriculum catalog; pass -title")
	}
	return ch, nil
}

func readSheet(path, sheet string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return spreadsheet.ReadTSV(f, sheet)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
