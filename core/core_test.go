package core

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/annofabcli/internal/contract"
	"github.com/huangsam/annofabcli/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testProject = "prj1"

func init() {
	progressOutput = io.Discard
}

func ptr[T any](v T) *T { return &v }

// testSpecs returns specs with two labels sharing a flag attribute.
func testSpecs() *schema.AnnotationSpecs {
	return &schema.AnnotationSpecs{
		ProjectID: testProject,
		Labels: []schema.Label{
			{
				LabelID:                   "lbl-car",
				LabelName:                 schema.NewMessage("car", "車"),
				AnnotationType:            schema.BoundingBoxType,
				AdditionalDataDefinitions: []string{"attr-occluded", "attr-color"},
			},
			{
				LabelID:                   "lbl-bike",
				LabelName:                 schema.NewMessage("bike", "自転車"),
				AnnotationType:            schema.PolygonType,
				AdditionalDataDefinitions: []string{"attr-occluded"},
			},
		},
		Additionals: []schema.AdditionalDataDefinition{
			{AdditionalDataDefinitionID: "attr-occluded", Name: schema.NewMessage("occluded", "隠れ"), Type: schema.FlagAttr},
			{
				AdditionalDataDefinitionID: "attr-color",
				Name:                       schema.NewMessage("color", "色"),
				Type:                       schema.ChoiceAttr,
				Choices: []schema.Choice{
					{ChoiceID: "c1", Name: schema.NewMessage("red", "赤"), IsDefault: true},
					{ChoiceID: "c2", Name: schema.NewMessage("blue", "青")},
				},
			},
		},
		Restrictions: []schema.Restriction{
			{
				AdditionalDataDefinitionID: "attr-color",
				Condition:                  schema.RestrictionCondition{Type: schema.EqualsCondition, Value: ptr("c1")},
			},
		},
		FormatVersion: "3.0.0",
		HistoryID:     "hist1",
	}
}

// newTestConfig returns a config writing JSON to a temp file.
func newTestConfig(t *testing.T) *contract.Config {
	t.Helper()
	return &contract.Config{
		ProjectID:   testProject,
		Output:      schema.JSONOut,
		OutputFile:  filepath.Join(t.TempDir(), "out.json"),
		Parallelism: 2,
		Yes:         true,
		Comment:     contract.DefaultComment,
	}
}

// readRows decodes the JSON output of a command.
func readRows(t *testing.T, cfg *contract.Config) []map[string]any {
	t.Helper()
	b, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(b, &rows))
	return rows
}

func flagValue(id string, v bool) schema.AdditionalData {
	return schema.AdditionalData{AdditionalDataDefinitionID: id, Flag: &v}
}

func choiceValue(id, choice string) schema.AdditionalData {
	return schema.AdditionalData{AdditionalDataDefinitionID: id, Choice: &choice}
}

func TestIsEditable(t *testing.T) {
	tests := []struct {
		name   string
		status schema.TaskStatus
		force  bool
		want   bool
	}{
		{"not started", schema.NotStartedStatus, false, true},
		{"break", schema.BreakStatus, false, true},
		{"on hold", schema.OnHoldStatus, false, true},
		{"working", schema.WorkingStatus, false, false},
		{"complete", schema.CompleteStatus, false, false},
		{"complete with force", schema.CompleteStatus, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &contract.Config{Force: tt.force}
			assert.Equal(t, tt.want, isEditable(cfg, &schema.Task{Status: tt.status}))
		})
	}
}

func TestConfirm(t *testing.T) {
	oldIn, oldOut := promptInput, promptOutput
	t.Cleanup(func() { promptInput, promptOutput = oldIn, oldOut })
	promptOutput = io.Discard

	promptInput = strings.NewReader("y\n")
	assert.True(t, confirm(&contract.Config{}, "ok?"))

	promptInput = strings.NewReader("n\n")
	assert.False(t, confirm(&contract.Config{}, "ok?"))

	promptInput = strings.NewReader("n\n")
	assert.True(t, confirm(&contract.Config{Yes: true}, "ok?"))
}

func TestTargetTaskIDs(t *testing.T) {
	ctx := context.Background()

	t.Run("explicit ids skip the API", func(t *testing.T) {
		client := &contract.MockAnnofabClient{}
		cfg := &contract.Config{ProjectID: testProject, TaskIDs: []string{"t1"}}
		ids, err := targetTaskIDs(ctx, cfg, client)
		require.NoError(t, err)
		assert.Equal(t, []string{"t1"}, ids)
		client.AssertNotCalled(t, "GetAllTasks", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("all tasks", func(t *testing.T) {
		client := &contract.MockAnnofabClient{}
		client.On("GetAllTasks", ctx, testProject, schema.TaskQueryForAPI{}).
			Return([]schema.Task{{TaskID: "t1"}, {TaskID: "t2"}}, nil)
		ids, err := targetTaskIDs(ctx, &contract.Config{ProjectID: testProject}, client)
		require.NoError(t, err)
		assert.Equal(t, []string{"t1", "t2"}, ids)
	})

	t.Run("API error", func(t *testing.T) {
		client := &contract.MockAnnofabClient{}
		client.On("GetAllTasks", ctx, testProject, schema.TaskQueryForAPI{}).Return(nil, errors.New("boom"))
		_, err := targetTaskIDs(ctx, &contract.Config{ProjectID: testProject}, client)
		assert.Error(t, err)
	})
}

func TestAnnotationQuery(t *testing.T) {
	ctx := context.Background()
	client := &contract.MockAnnofabClient{}
	client.On("GetAnnotationSpecs", ctx, testProject, "").Return(testSpecs(), nil)

	cfg := &contract.Config{ProjectID: testProject}
	a, err := loadAccessor(ctx, cfg, client)
	require.NoError(t, err)

	q, err := annotationQuery(cfg, a)
	require.NoError(t, err)
	assert.Equal(t, schema.AnnotationQueryForAPI{}, q)

	cfg.AnnotationQuery = `{"label": "car", "attributes": {"color": "blue"}}`
	q, err = annotationQuery(cfg, a)
	require.NoError(t, err)
	assert.Equal(t, "lbl-car", q.LabelID)
	assert.Equal(t, []schema.AdditionalData{choiceValue("attr-color", "c2")}, q.Attributes)

	cfg.AnnotationQuery = `{"label": "truck"}`
	_, err = annotationQuery(cfg, a)
	assert.Error(t, err)
}
