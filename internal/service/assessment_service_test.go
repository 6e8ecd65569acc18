package service

import (
	"encoding/json"
	"testing"

	"learnpath_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func question(id, qtype, answer string, options ...string) model.TestOutQuestion {
	q := model.TestOutQuestion{
		QuestionType: qtype,
		Content:      "题目 " + id,
		Answer:       answer,
	}
	q.ID = id
	if len(options) > 0 {
		data, _ := json.Marshal(options)
		q.Options = data
	}
	return q
}

func TestToEngineQuestions(t *testing.T) {
	rows := []model.TestOutQuestion{
		question("q1", model.QuestionSingleChoice, "2", "a", "b", "c"),
		question("q2", model.QuestionTrueFalse, "false"),
		question("q3", model.QuestionFillBlank, "make"),
	}

	questions, err := toEngineQuestions(rows)
	require.NoError(t, err)
	require.Len(t, questions, 3)

	assert.Equal(t, "q1", questions[0].ID)
	assert.Equal(t, []string{"a", "b", "c"}, questions[0].Options)
	assert.Equal(t, 2, questions[0].CorrectAnswer)

	assert.Nil(t, questions[1].Options)
	assert.Equal(t, false, questions[1].CorrectAnswer)

	assert.Equal(t, "make", questions[2].CorrectAnswer)
}

func TestToEngineQuestionsBadRows(t *testing.T) {
	t.Run("choice answer is not an index", func(t *testing.T) {
		_, err := toEngineQuestions([]model.TestOutQuestion{
			question("q1", model.QuestionSingleChoice, "abc", "a", "b"),
		})
		assert.Error(t, err)
	})

	t.Run("unknown question type", func(t *testing.T) {
		_, err := toEngineQuestions([]model.TestOutQuestion{
			question("q1", "essay", "x"),
		})
		assert.Error(t, err)
	})

	t.Run("corrupt options column", func(t *testing.T) {
		q := question("q1", model.QuestionSingleChoice, "0")
		q.Options = json.RawMessage(`{not json`)
		_, err := toEngineQuestions([]model.TestOutQuestion{q})
		assert.Error(t, err)
	})
}

func TestValidateQuestion(t *testing.T) {
	tests := []struct {
		name    string
		req     QuestionRequest
		wantErr bool
	}{
		{
			name: "valid single choice",
			req:  QuestionRequest{QuestionType: model.QuestionSingleChoice, Options: []string{"a", "b"}, Answer: "1"},
		},
		{
			name:    "single choice with one option",
			req:     QuestionRequest{QuestionType: model.QuestionSingleChoice, Options: []string{"a"}, Answer: "0"},
			wantErr: true,
		},
		{
			name:    "single choice index out of range",
			req:     QuestionRequest{QuestionType: model.QuestionSingleChoice, Options: []string{"a", "b"}, Answer: "2"},
			wantErr: true,
		},
		{
			name:    "single choice negative index",
			req:     QuestionRequest{QuestionType: model.QuestionSingleChoice, Options: []string{"a", "b"}, Answer: "-1"},
			wantErr: true,
		},
		{
			name: "valid true false",
			req:  QuestionRequest{QuestionType: model.QuestionTrueFalse, Answer: "true"},
		},
		{
			name:    "true false with other text",
			req:     QuestionRequest{QuestionType: model.QuestionTrueFalse, Answer: "yes"},
			wantErr: true,
		},
		{
			name: "valid fill blank",
			req:  QuestionRequest{QuestionType: model.QuestionFillBlank, Answer: "interface"},
		},
		{
			name:    "fill blank without answer",
			req:     QuestionRequest{QuestionType: model.QuestionFillBlank, Answer: ""},
			wantErr: true,
		},
		{
			name:    "unknown type",
			req:     QuestionRequest{QuestionType: "matching", Answer: "x"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateQuestion(tt.req)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
