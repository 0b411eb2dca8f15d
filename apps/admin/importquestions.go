package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core/assessment"
)

// CSV columns of the question import file; the header row is required.
var questionColumns = []string{"text", "type", "points", "topic_area", "correct_answer", "options"}

// optionsSep separates the options of choice questions. The correct one is prefixed with "*".
const optionsSep = "|"

// importQuestions creates every question of the CSV `r` on behalf of the reviewer `as`.
// Rows are validated before anything is created: a bad row imports nothing.
func (cli *commandLine) importQuestions(r io.Reader, as string) (int, error) {
	ctx := context.Background()
	actor, err := cli.profileSvc.GetByUsernameOrEmail(ctx, as)
	if err != nil {
		return 0, errors.Wrapf(err, "finding %q", as)
	}

	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return 0, errors.Wrap(err, "reading CSV")
	}
	if len(records) == 0 {
		return 0, errors.New("empty CSV")
	}
	index, err := columnIndex(records[0])
	if err != nil {
		return 0, err
	}

	questions := make([]assessment.NewQuestion, 0, len(records)-1)
	for i, rec := range records[1:] {
		line := i + 2
		nq, err := parseQuestion(rec, index)
		if err != nil {
			return 0, errors.Wrapf(err, "line %d", line)
		}
		if err := nq.Validate(cli.validate); err != nil {
			return 0, errors.Wrapf(err, "line %d", line)
		}
		questions = append(questions, nq)
	}

	for i, nq := range questions {
		if _, err := cli.assessmentSvc.CreateQuestion(ctx, actor, nq); err != nil {
			return i, errors.Wrapf(err, "creating question of line %d", i+2)
		}
	}
	return len(questions), nil
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range questionColumns[:3] { // text, type, points
		if _, ok := index[col]; !ok {
			return nil, errors.Errorf("missing %q column", col)
		}
	}
	return index, nil
}

func parseQuestion(rec []string, index map[string]int) (assessment.NewQuestion, error) {
	get := func(col string) string {
		if i, ok := index[col]; ok && i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	text, typ, pts := get("text"), get("type"), get("points")
	err := vala.BeginValidation().Validate(
		vala.StringNotEmpty(text, "text"),
		vala.StringNotEmpty(typ, "type"),
		vala.StringNotEmpty(pts, "points"),
		isInt(pts, "points"),
	).Check()
	if err != nil {
		return assessment.NewQuestion{}, err
	}
	points, _ := strconv.Atoi(pts)

	nq := assessment.NewQuestion{
		Text:          text,
		Type:          assessment.QuestionType(typ),
		Points:        points,
		TopicArea:     get("topic_area"),
		CorrectAnswer: get("correct_answer"),
	}
	if opts := get("options"); opts != "" {
		for _, opt := range strings.Split(opts, optionsSep) {
			opt = strings.TrimSpace(opt)
			correct := strings.HasPrefix(opt, "*")
			nq.Options = append(nq.Options, assessment.Option{Text: strings.TrimPrefix(opt, "*"), IsCorrect: correct})
		}
	}
	return nq, nil
}

func isInt(s, paramName string) vala.Checker {
	return func() (bool, string) {
		if _, err := strconv.Atoi(s); err != nil {
			return false, fmt.Sprintf("parameter was not an integer: %s", paramName)
		}
		return true, ""
	}
}
