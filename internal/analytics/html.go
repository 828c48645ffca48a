// Package analytics builds a single-page HTML spending report from ledger
// transactions and optionally serves it over HTTP.
package analytics

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/apetrov/zenimport/internal/models"
	"github.com/apetrov/zenimport/internal/report"
)

// topTransactionsPerCategory limits the detail table under each top category.
const topTransactionsPerCategory = 3

// Report is the fully computed analytics page model.
type Report struct {
	Summary       report.Summary
	Weekly        []report.PeriodBucket
	Categories    []report.CategoryTotal
	TopCategories []CategoryDetail
	Count         int
}

// CategoryDetail is one top category with its largest transactions.
type CategoryDetail struct {
	Category     string
	Total        decimal.Decimal
	Transactions []models.RemoteTransaction
}

// Build computes all aggregates for the analytics page. topN bounds both
// the category bar list and the per-category detail tables.
func Build(transactions []models.RemoteTransaction, topN int) *Report {
	r := &Report{
		Summary:    report.Summarize(transactions),
		Weekly:     report.OutcomeByPeriod(transactions, report.PeriodWeek),
		Categories: report.TopCategories(transactions, topN),
		Count:      len(transactions),
	}

	for _, ct := range r.Categories {
		if ct.Category == report.OtherLabel {
			continue
		}
		detail := CategoryDetail{Category: ct.Category, Total: ct.Outcome}
		for _, t := range transactions {
			cat := t.Category
			if cat == "" {
				cat = report.NoCategoryLabel
			}
			if cat == ct.Category && t.Outcome.IsPositive() {
				detail.Transactions = append(detail.Transactions, t)
			}
		}
		sort.SliceStable(detail.Transactions, func(i, j int) bool {
			return detail.Transactions[i].Outcome.GreaterThan(detail.Transactions[j].Outcome)
		})
		if len(detail.Transactions) > topTransactionsPerCategory {
			detail.Transactions = detail.Transactions[:topTransactionsPerCategory]
		}
		r.TopCategories = append(r.TopCategories, detail)
	}

	return r
}

// Render writes the HTML page.
func (r *Report) Render(w io.Writer) error {
	return pageTemplate.Execute(w, r)
}

// RenderToFile writes the HTML page to the given path.
func (r *Report) RenderToFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file %q: %w", path, err)
	}
	defer f.Close()
	return r.Render(f)
}

var pageTemplate = template.Must(template.New("analytics").Funcs(template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"date":  func(t models.RemoteTransaction) string { return t.Date.Format("2006-01-02") },
}).Parse(`<!DOCTYPE html>
<html lang="ru">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Аналитика расходов</title>
<style>
* { box-sizing: border-box; }
body { font-family: system-ui, -apple-system, sans-serif; margin: 0; padding: 20px; background: #f5f5f5; }
h1 { margin-top: 0; }
.summary-block { display: flex; gap: 24px; flex-wrap: wrap; margin-bottom: 24px; }
.summary-item { background: #fff; padding: 16px 24px; border-radius: 12px; box-shadow: 0 1px 3px rgba(0,0,0,0.1); min-width: 160px; }
.summary-item .label { display: block; color: #666; font-size: 14px; }
.summary-item .value { font-size: 24px; font-weight: 600; }
.summary-item.income .value { color: #0d7d43; }
.summary-item.outcome .value { color: #c5221f; }
.card { background: #fff; border-radius: 12px; padding: 16px; margin-bottom: 20px; box-shadow: 0 1px 3px rgba(0,0,0,0.1); overflow-x: auto; }
table { width: 100%; border-collapse: collapse; }
th, td { padding: 8px 12px; text-align: left; border-bottom: 1px solid #eee; }
th { background: #f8f9fa; font-weight: 600; }
.cat-row td { background: #f0f4f8; font-weight: 500; }
</style>
</head>
<body>
<h1>Аналитика расходов</h1>
<p>Всего операций: {{.Count}}</p>

<div class="summary-block">
  <div class="summary-item income"><span class="label">Доходы</span><span class="value">{{money .Summary.Income}}</span></div>
  <div class="summary-item outcome"><span class="label">Расходы</span><span class="value">−{{money .Summary.Outcome}}</span></div>
  <div class="summary-item balance"><span class="label">Баланс</span><span class="value">{{money .Summary.Balance}}</span></div>
</div>

<div class="card">
  <h2>Расходы по неделям</h2>
  <table>
    <thead><tr><th>Неделя</th><th>Категория</th><th>Сумма</th></tr></thead>
    <tbody>
    {{range .Weekly}}{{$start := .Start}}{{range .Categories}}
      <tr><td>{{$start.Format "2006-01-02"}}</td><td>{{.Category}}</td><td>{{money .Outcome}}</td></tr>
    {{end}}{{end}}
    </tbody>
  </table>
</div>

<div class="card">
  <h2>Соотношение по категориям</h2>
  <table>
    <thead><tr><th>Категория</th><th>Сумма</th></tr></thead>
    <tbody>
    {{range .Categories}}
      <tr><td>{{.Category}}</td><td>{{money .Outcome}}</td></tr>
    {{end}}
    </tbody>
  </table>
</div>

<div class="card">
  <h2>Топ категории и крупные траты</h2>
  <table>
    <thead><tr><th>Дата</th><th>Сумма</th><th>Получатель</th><th>Комментарий</th></tr></thead>
    <tbody>
    {{range .TopCategories}}
      <tr class="cat-row"><td colspan="4"><strong>{{.Category}}</strong> — всего {{money .Total}}</td></tr>
      {{range .Transactions}}
      <tr><td>{{date .}}</td><td>{{money .Outcome}}</td><td>{{.Payee}}</td><td>{{.Comment}}</td></tr>
      {{end}}
    {{end}}
    </tbody>
  </table>
</div>
</body>
</html>
`))
