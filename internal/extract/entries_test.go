package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/menu-catalog/internal/catalog"
)

func TestParseDetails(t *testing.T) {
	t.Parallel()

	name, description, err := ParseDetails(productPage, DefaultSelectors())
	require.NoError(t, err)
	assert.Equal(t, "Біг Мак®", name)
	assert.Equal(t, "Два біфштекси з яловичини, соус, салат.", description)
}

func TestParseDetailsMissingElements(t *testing.T) {
	t.Parallel()

	name, description, err := ParseDetails("<html><body><p>404</p></body></html>", DefaultSelectors())
	require.NoError(t, err)
	assert.Empty(t, name)
	assert.Empty(t, description)
}

func TestParseNutritionResults(t *testing.T) {
	t.Parallel()

	entries, err := ParseNutrition(nutritionPanel, DefaultSelectors())
	require.NoError(t, err)
	require.Len(t, entries, 12)

	want := []EntryResult{
		{Label: "калорійність", RawValue: "550\n(27%)", Field: "calories", Value: 550},
		{Label: "жири", RawValue: "29,7 г", Field: "fats", Value: 29.7},
		{Label: "вуглеводи", RawValue: "45 г", Field: "carbs", Value: 45},
		{Label: "білки", RawValue: "25 г", Field: "proteins", Value: 25},
		{Label: "нжк:", RawValue: "11 г", Field: "unsaturated_fats", Value: 11},
		{Label: "цукор:", RawValue: "9,2 г", Field: "sugar", Value: 9.2},
		{Label: "сіль:", RawValue: "2,2 г", Field: "salt", Value: 2.2},
		{Label: "порція:", RawValue: "214 г", Field: "portion", Value: 214},
		{Label: "клітковина:", RawValue: "3 г", Skip: SkipUnknownLabel},
		{Label: "сіль:", RawValue: "н/д", Field: "salt", Skip: SkipMalformedValue},
		{Skip: SkipMissingMetric},
		{Label: "білки", Skip: SkipMissingValue},
	}
	for i := range want {
		assert.Equal(t, want[i].Skip, entries[i].Skip, "entry %d", i)
		assert.Equal(t, want[i].Label, entries[i].Label, "entry %d", i)
		assert.Equal(t, want[i].Field, entries[i].Field, "entry %d", i)
		assert.InDelta(t, want[i].Value, entries[i].Value, 1e-9, "entry %d", i)
	}
	assert.Equal(t, "550\n(27%)", entries[0].RawValue)
}

func TestApplyLastEntryWins(t *testing.T) {
	t.Parallel()

	record := catalog.ProductRecord{Name: "Кава"}
	applied := Apply(&record, []EntryResult{
		{Field: "salt", Value: 1},
		{Field: "sugar", Skip: SkipMalformedValue},
		{Field: "salt", Value: 2},
	})
	assert.Equal(t, 2, applied)
	require.NotNil(t, record.Salt)
	assert.InDelta(t, 2.0, *record.Salt, 1e-9)
	assert.Nil(t, record.Sugar)
}

func TestApplyNoEntriesLeavesRecordUntouched(t *testing.T) {
	t.Parallel()

	record := catalog.ProductRecord{Name: "Вода"}
	assert.Zero(t, Apply(&record, nil))
	assert.False(t, record.HasNutrition())
}

func TestVisibleText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		want string
	}{
		{"plain", `<span id="x"> 550 ккал </span>`, "550 ккал"},
		{"br splits", `<span id="x">2,5 г<br>(4%)</span>`, "2,5 г\n(4%)"},
		{"block child", `<div id="x">Сіль:<div>(г)</div></div>`, "Сіль:\n(г)"},
		{"inline joined", `<span id="x">1<b>0</b>0</span>`, "100"},
		{"collapsed spaces", "<span id=\"x\">a \t  b</span>", "a b"},
		{"comments dropped", `<span id="x">5<!-- hidden --> г</span>`, "5 г"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			doc, err := goquery.NewDocumentFromReader(stringsReader(tt.html))
			require.NoError(t, err)
			assert.Equal(t, tt.want, visibleText(doc.Find("#x")))
		})
	}
}

func TestEntryResultMetricLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ok", EntryResult{Field: "fats"}.MetricLabel())
	assert.Equal(t, "unknown_label", EntryResult{Skip: SkipUnknownLabel}.MetricLabel())
}

func TestSelectorsValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, DefaultSelectors().Validate())
	sel := DefaultSelectors()
	sel.Metric = ""
	assert.Error(t, sel.Validate())
}

func stringsReader(s string) *strings.Reader { return strings.NewReader(s) }
