package catalog

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/abhisek/pylearn/internal/store"
)

// XLSXColumns is the expected header row, one task per following row.
// Answer holds the quiz answer, the typing text or the exercise solution;
// Content holds the theory body, quiz question or exercise prompt.
var XLSXColumns = []string{
	"Module", "Module description", "Lesson", "Lesson description",
	"Task", "Type", "Description", "Content", "Answer",
}

const xlsxVersion = "v1.0.0"

// LoadXLSX reads a catalog from the given sheet (the first sheet when
// empty). Rows are grouped into modules and lessons by name in sheet order.
func LoadXLSX(path, sheet string) (*Catalog, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &ValidationError{Source: path, Err: fmt.Errorf("read sheet %q: %w", sheet, err)}
	}
	c, err := fromRows(rows)
	if err != nil {
		return nil, &ValidationError{Source: path, Err: err}
	}
	return c, nil
}

func fromRows(rows [][]string) (*Catalog, error) {
	c := &Catalog{Version: xlsxVersion}
	if len(rows) == 0 {
		return c, nil
	}

	cell := func(row []string, i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	moduleIdx := map[string]int{}
	lessonIdx := map[[2]string]int{}
	for n, row := range rows[1:] {
		line := n + 2
		moduleName, lessonName := cell(row, 0), cell(row, 2)
		if moduleName == "" && lessonName == "" && cell(row, 4) == "" {
			continue
		}
		if moduleName == "" || lessonName == "" {
			return nil, fmt.Errorf("row %d: module and lesson are required", line)
		}

		mi, ok := moduleIdx[moduleName]
		if !ok {
			mi = len(c.Modules)
			moduleIdx[moduleName] = mi
			c.Modules = append(c.Modules, Module{Name: moduleName, Description: cell(row, 1)})
		}
		m := &c.Modules[mi]

		key := [2]string{moduleName, lessonName}
		li, ok := lessonIdx[key]
		if !ok {
			li = len(m.Lessons)
			lessonIdx[key] = li
			m.Lessons = append(m.Lessons, Lesson{Name: lessonName, Description: cell(row, 3)})
		}
		l := &m.Lessons[li]

		taskName := cell(row, 4)
		if taskName == "" {
			continue
		}
		t, err := taskFromRow(taskName, store.TaskType(strings.ToLower(cell(row, 5))), cell(row, 6), cell(row, 7), cell(row, 8))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		l.Tasks = append(l.Tasks, t)
	}

	if err := c.Check(); err != nil {
		return nil, err
	}
	return c, nil
}

func taskFromRow(name string, typ store.TaskType, desc, content, answer string) (Task, error) {
	if typ == "" {
		typ = store.TypeTheory
	}
	t := Task{Name: name, Type: typ, Description: desc}
	switch typ {
	case store.TypeTheory:
		t.Content = content
	case store.TypeQuiz:
		t.Question, t.Answer = content, answer
	case store.TypeTyping:
		t.Text = answer
	case store.TypeExercise:
		t.Prompt, t.Solution = content, answer
	default:
		return t, fmt.Errorf("unknown task type %q", typ)
	}
	return t, nil
}

// WriteTemplate saves an XLSX file with the header row and one example
// row per task type.
func WriteTemplate(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows := [][]string{
		XLSXColumns,
		{"Mon module", "", "Ma leçon", "", "Théorie", "theory", "Lisez la leçon.", "Texte de la leçon", ""},
		{"Mon module", "", "Ma leçon", "", "Quiz", "quiz", "", "2 + 2 = ?\nA) 3\nB) 4", "B"},
		{"Mon module", "", "Ma leçon", "", "Saisie", "typing", "", "", "print('ok')"},
		{"Mon module", "", "Ma leçon", "", "Exercice", "exercise", "", "Affichez ok.", "print('ok')"},
	}
	for i, row := range rows {
		for j, v := range row {
			ref, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, ref, v); err != nil {
				return err
			}
		}
	}
	return f.SaveAs(path)
}
