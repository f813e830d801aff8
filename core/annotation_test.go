package core

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/annofabcli/internal/contract"
	"github.com/huangsam/annofabcli/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func detail(id, labelID string, protected bool, values ...schema.AdditionalData) schema.AnnotationDetail {
	return schema.AnnotationDetail{
		AnnotationID:       id,
		LabelID:            labelID,
		IsProtected:        protected,
		DataHoldingType:    schema.InnerHolding,
		AdditionalDataList: values,
	}
}

func TestMergeAdditionalData(t *testing.T) {
	tests := []struct {
		name    string
		current []schema.AdditionalData
		changes []schema.AdditionalData
		want    []schema.AdditionalData
	}{
		{
			name:    "overwrite keeps order",
			current: []schema.AdditionalData{flagValue("attr-occluded", false), choiceValue("attr-color", "c1")},
			changes: []schema.AdditionalData{flagValue("attr-occluded", true)},
			want:    []schema.AdditionalData{flagValue("attr-occluded", true), choiceValue("attr-color", "c1")},
		},
		{
			name:    "new attribute is appended",
			current: []schema.AdditionalData{flagValue("attr-occluded", false)},
			changes: []schema.AdditionalData{choiceValue("attr-color", "c2")},
			want:    []schema.AdditionalData{flagValue("attr-occluded", false), choiceValue("attr-color", "c2")},
		},
		{
			name:    "empty current",
			changes: []schema.AdditionalData{choiceValue("attr-color", "c2")},
			want:    []schema.AdditionalData{choiceValue("attr-color", "c2")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mergeAdditionalData(tt.current, tt.changes))
		})
	}
}

func TestExecuteListAnnotation(t *testing.T) {
	ctx := context.Background()
	client := specsClient(ctx, "")
	client.On("GetAllAnnotationList", ctx, testProject, schema.AnnotationQueryForAPI{LabelID: "lbl-car"}).Return([]schema.SingleAnnotation{
		{
			ProjectID:       testProject,
			TaskID:          "t1",
			InputDataID:     "i1",
			Detail:          detail("a1", "lbl-car", false, flagValue("attr-occluded", true), choiceValue("attr-color", "c2")),
			UpdatedDatetime: "2024-01-01T00:00:00+09:00",
		},
	}, nil)
	cfg := newTestConfig(t)
	cfg.AnnotationQuery = `{"label": "car"}`

	require.NoError(t, ExecuteListAnnotation(ctx, cfg, client, nil))
	rows := readRows(t, cfg)
	require.Len(t, rows, 1)
	assert.Equal(t, "car", rows[0]["label"])
	assert.Equal(t, map[string]any{"occluded": true, "color": "blue"}, rows[0]["attributes"])
	client.AssertExpectations(t)
}

func TestExecuteListAnnotation_PerTask(t *testing.T) {
	ctx := context.Background()
	client := specsClient(ctx, "")
	client.On("GetAllAnnotationList", ctx, testProject, schema.AnnotationQueryForAPI{TaskID: "t1", ExactMatchTaskID: true}).
		Return([]schema.SingleAnnotation{{TaskID: "t1", Detail: detail("a1", "lbl-car", false)}}, nil)
	client.On("GetAllAnnotationList", ctx, testProject, schema.AnnotationQueryForAPI{TaskID: "t2", ExactMatchTaskID: true}).
		Return(nil, assert.AnError)
	cfg := newTestConfig(t)
	cfg.TaskIDs = []string{"t1", "t2"}

	require.NoError(t, ExecuteListAnnotation(ctx, cfg, client, nil))
	assert.Len(t, readRows(t, cfg), 1)
}

func TestExecuteCountAnnotations(t *testing.T) {
	list := []schema.SingleAnnotation{
		{TaskID: "t1", Detail: detail("a1", "lbl-car", false, choiceValue("attr-color", "c1"))},
		{TaskID: "t1", Detail: detail("a2", "lbl-car", false, choiceValue("attr-color", "c2"))},
		{TaskID: "t2", Detail: detail("a3", "lbl-car", false, choiceValue("attr-color", "c2"))},
		{TaskID: "t2", Detail: detail("a4", "lbl-bike", false)},
	}
	tests := []struct {
		name      string
		countType schema.CountType
		want      []map[string]any
	}{
		{
			name:      "by label",
			countType: schema.CountByLabel,
			want: []map[string]any{
				{"label": "bike", "count": float64(1)},
				{"label": "car", "count": float64(3)},
			},
		},
		{
			name:      "by attribute",
			countType: schema.CountByAttribute,
			want: []map[string]any{
				{"label": "car", "attribute": "color", "value": "blue", "count": float64(2)},
				{"label": "car", "attribute": "color", "value": "red", "count": float64(1)},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			client := specsClient(ctx, "")
			client.On("GetAllAnnotationList", ctx, testProject, schema.AnnotationQueryForAPI{}).Return(list, nil)
			cfg := newTestConfig(t)
			cfg.CountType = tt.countType

			require.NoError(t, ExecuteCountAnnotations(ctx, cfg, client, nil))
			assert.Equal(t, tt.want, readRows(t, cfg))
		})
	}
}

func TestExecuteDeleteAnnotation(t *testing.T) {
	tests := []struct {
		name     string
		force    bool
		dryRun   bool
		wantKept []string
	}{
		{name: "protected kept", wantKept: []string{"a2", "a3"}},
		{name: "force deletes protected", force: true, wantKept: []string{"a2"}},
		{name: "dry run", dryRun: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			client := specsClient(ctx, "")
			client.On("GetTask", mock.Anything, testProject, "t1").
				Return(&schema.Task{TaskID: "t1", Status: schema.NotStartedStatus, InputDataIDList: []string{"i1"}}, nil)
			client.On("GetTask", mock.Anything, testProject, "t2").
				Return(&schema.Task{TaskID: "t2", Status: schema.WorkingStatus, InputDataIDList: []string{"i2"}}, nil)
			client.On("GetEditorAnnotation", mock.Anything, testProject, "t1", "i1").Return(&schema.Annotation{
				ProjectID:   testProject,
				TaskID:      "t1",
				InputDataID: "i1",
				Details: []schema.AnnotationDetail{
					detail("a1", "lbl-car", false),
					detail("a2", "lbl-bike", false),
					detail("a3", "lbl-car", true),
				},
			}, nil)
			client.On("GetEditorAnnotation", mock.Anything, testProject, "t2", "i2").
				Return(&schema.Annotation{Details: []schema.AnnotationDetail{detail("b1", "lbl-car", false)}}, nil)

			var kept []string
			client.On("PutAnnotation", mock.Anything, testProject, "t1", "i1", mock.Anything).
				Run(func(args mock.Arguments) {
					for _, d := range args.Get(4).(schema.Annotation).Details {
						kept = append(kept, d.AnnotationID)
					}
				}).Return(nil)

			cfg := newTestConfig(t)
			cfg.AnnotationQuery = `{"label": "car"}`
			cfg.TaskIDs = []string{"t1", "t2"}
			cfg.Force = tt.force
			cfg.DryRun = tt.dryRun

			require.NoError(t, ExecuteDeleteAnnotation(ctx, cfg, client, nil))
			if tt.dryRun {
				client.AssertNotCalled(t, "PutAnnotation", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				return
			}
			assert.Equal(t, tt.wantKept, kept)
			if !tt.force {
				client.AssertNotCalled(t, "PutAnnotation", mock.Anything, testProject, "t2", "i2", mock.Anything)
			}
		})
	}
}

func TestExecuteChangeAttributes(t *testing.T) {
	ctx := context.Background()
	client := specsClient(ctx, "")
	client.On("GetAllAnnotationList", ctx, testProject, schema.AnnotationQueryForAPI{LabelID: "lbl-car"}).Return([]schema.SingleAnnotation{
		{ProjectID: testProject, TaskID: "t1", InputDataID: "i1", Detail: detail("a1", "lbl-car", false, flagValue("attr-occluded", false))},
		{ProjectID: testProject, TaskID: "t2", InputDataID: "i2", Detail: detail("a2", "lbl-car", false)},
	}, nil)
	client.On("GetTask", ctx, testProject, "t1").Return(&schema.Task{TaskID: "t1", Status: schema.BreakStatus}, nil)
	client.On("GetTask", ctx, testProject, "t2").Return(&schema.Task{TaskID: "t2", Status: schema.CompleteStatus}, nil)

	var items []schema.BatchAnnotationRequestItem
	client.On("BatchUpdateAnnotations", ctx, testProject, mock.Anything).
		Run(func(args mock.Arguments) { items = args.Get(2).([]schema.BatchAnnotationRequestItem) }).
		Return(nil)

	cfg := newTestConfig(t)
	cfg.AnnotationQuery = `{"label": "car"}`
	cfg.Attributes = `{"occluded": true, "color": "blue"}`

	require.NoError(t, ExecuteChangeAttributes(ctx, cfg, client, nil))
	require.Len(t, items, 1)
	assert.Equal(t, "a1", items[0].AnnotationID)
	assert.Equal(t, schema.BatchPut, items[0].Type)
	assert.Equal(t, []schema.AdditionalData{
		flagValue("attr-occluded", true),
		choiceValue("attr-color", "c2"),
	}, items[0].AdditionalDataList)
}

func TestExecuteChangeAttributes_InvalidInput(t *testing.T) {
	tests := []struct {
		name       string
		attributes string
	}{
		{"missing", ""},
		{"not json", "{"},
		{"empty object", "{}"},
		{"unknown attribute", `{"speed": 3}`},
		{"wrong type", `{"occluded": "yes"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			client := specsClient(ctx, "")
			client.On("GetAllAnnotationList", ctx, testProject, mock.Anything).Return([]schema.SingleAnnotation{}, nil)
			cfg := newTestConfig(t)
			cfg.AnnotationQuery = `{"label": "car"}`
			cfg.Attributes = tt.attributes

			assert.Error(t, ExecuteChangeAttributes(ctx, cfg, client, nil))
			client.AssertNotCalled(t, "BatchUpdateAnnotations", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestExecuteImportAnnotation(t *testing.T) {
	root := writeAnnotationDir(t, map[string]string{
		"t1/i1.json": simpleAnnotationJSON,
		"t1/i5.json": `{"details": []}`,
		"t3/i3.json": `{"details": [{"label": "car", "data": {"_type": "BoundingBox"}, "attributes": {}}]}`,
	})
	updated := "2024-01-01T00:00:00+09:00"

	ctx := context.Background()
	client := specsClient(ctx, "")
	client.On("GetTask", mock.Anything, testProject, "t1").
		Return(&schema.Task{TaskID: "t1", Status: schema.NotStartedStatus, InputDataIDList: []string{"i1"}}, nil)
	client.On("GetEditorAnnotation", mock.Anything, testProject, "t1", "i1").
		Return(&schema.Annotation{UpdatedDatetime: &updated}, nil)

	var put schema.Annotation
	client.On("PutAnnotation", mock.Anything, testProject, "t1", "i1", mock.Anything).
		Run(func(args mock.Arguments) { put = args.Get(4).(schema.Annotation) }).
		Return(nil)

	cfg := newTestConfig(t)
	cfg.InputPath = root
	cfg.TaskIDs = []string{"t1"}

	require.NoError(t, ExecuteImportAnnotation(ctx, cfg, client, nil))
	require.Len(t, put.Details, 2)
	assert.Equal(t, &updated, put.UpdatedDatetime)
	assert.Equal(t, "a1", put.Details[0].AnnotationID)
	assert.Equal(t, "lbl-car", put.Details[0].LabelID)
	assert.Equal(t, []schema.AdditionalData{
		choiceValue("attr-color", "c2"),
		flagValue("attr-occluded", true),
	}, put.Details[0].AdditionalDataList)
	assert.Equal(t, "lbl-bike", put.Details[1].LabelID)
	client.AssertNotCalled(t, "GetTask", mock.Anything, testProject, "t3")
}

func TestExecuteImportAnnotation_ExistingSkipped(t *testing.T) {
	root := writeAnnotationDir(t, map[string]string{"t1/i1.json": simpleAnnotationJSON})

	ctx := context.Background()
	client := specsClient(ctx, "")
	client.On("GetTask", mock.Anything, testProject, "t1").
		Return(&schema.Task{TaskID: "t1", Status: schema.NotStartedStatus, InputDataIDList: []string{"i1"}}, nil)
	client.On("GetEditorAnnotation", mock.Anything, testProject, "t1", "i1").
		Return(&schema.Annotation{Details: []schema.AnnotationDetail{detail("x", "lbl-car", false)}}, nil)

	cfg := newTestConfig(t)
	cfg.InputPath = root

	require.NoError(t, ExecuteImportAnnotation(ctx, cfg, client, nil))
	client.AssertNotCalled(t, "PutAnnotation", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestToAnnotationDetails(t *testing.T) {
	ctx := context.Background()
	a, err := loadAccessor(ctx, &contract.Config{ProjectID: testProject}, specsClient(ctx, ""))
	require.NoError(t, err)

	in := []schema.SimpleAnnotationDetail{
		{Label: "car", Data: json.RawMessage(`{"_type": "BoundingBox"}`), Attributes: map[string]any{"color": nil}},
		{Label: "car", AnnotationID: "seg", Data: json.RawMessage(`{"_type": "Segmentation"}`)},
		{Label: "truck", AnnotationID: "unknown", Data: json.RawMessage(`{"_type": "Points"}`)},
	}

	out, err := toAnnotationDetails(&contract.Config{}, a, in)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.NotEmpty(t, out[0].AnnotationID)
	assert.Empty(t, out[0].AdditionalDataList)

	_, err = toAnnotationDetails(&contract.Config{Strict: true}, a, in)
	assert.Error(t, err)
}

func TestExecuteDumpAnnotation(t *testing.T) {
	ctx := context.Background()
	client := specsClient(ctx, "")
	client.On("GetTask", mock.Anything, testProject, "t1").
		Return(&schema.Task{ProjectID: testProject, TaskID: "t1", Phase: schema.AnnotationPhase, InputDataIDList: []string{"i1"}}, nil)
	client.On("GetEditorAnnotation", mock.Anything, testProject, "t1", "i1").Return(&schema.Annotation{
		TaskID:      "t1",
		InputDataID: "i1",
		Details:     []schema.AnnotationDetail{detail("a1", "lbl-car", false, flagValue("attr-occluded", true))},
	}, nil)

	cfg := newTestConfig(t)
	cfg.OutputDir = t.TempDir()
	cfg.TaskIDs = []string{"t1"}
	cfg.Simple = true

	require.NoError(t, ExecuteDumpAnnotation(ctx, cfg, client, nil))

	b, err := os.ReadFile(filepath.Join(cfg.OutputDir, "t1", "i1.json"))
	require.NoError(t, err)
	var sa schema.SimpleAnnotation
	require.NoError(t, json.Unmarshal(b, &sa))
	assert.Equal(t, SimpleAnnotationFormatVersion, sa.AnnotationFormatVersion)
	require.Len(t, sa.Details, 1)
	assert.Equal(t, "car", sa.Details[0].Label)
	assert.Equal(t, true, sa.Details[0].Attributes["occluded"])
}

func TestExecuteDumpAnnotation_RequiresOutputDir(t *testing.T) {
	assert.Error(t, ExecuteDumpAnnotation(context.Background(), newTestConfig(t), &contract.MockAnnofabClient{}, nil))
}
