package parser

import (
	"regexp"
	"strings"

	"github.com/apetrov/zenimport/internal/models"
)

// TinkoffParser handles T-Bank (Тинькофф) operation statements.
//
// Unlike the Yandex layout, the description follows the amounts:
//
//	ДД.ММ.ГГГГ ЧЧ:ММ  ДД.ММ.ГГГГ  ±Сумма ₽  ±Сумма ₽  [*1234]  Описание операции
//
// The first amount is in the operation currency, the second is the amount
// settled in the card currency.
type TinkoffParser struct{}

func (p *TinkoffParser) BankName() string {
	return "T-Bank"
}

var tinkoffBoilerplate = []*regexp.Regexp{
	regexp.MustCompile(`Страница \d+ из \d+`),
	regexp.MustCompile(`Справка о движении средств[^\n]*`),
	regexp.MustCompile(`Итого пополнений[^\n]*`),
	regexp.MustCompile(`Итого расходов[^\n]*`),
	regexp.MustCompile(`Остаток на \d{2}\.\d{2}\.\d{4}[^\n]*₽`),
}

var tinkoffHeaderKeywords = []string{
	"Дата операции",
	"Дата списания",
	"Номер карты",
	"Сумма операции",
	"Сумма в валюте",
	"Описание операции",
}

func (p *TinkoffParser) Parse(text string) (*models.Statement, error) {
	blocks := tokenize(text, opStampLoose, tinkoffBoilerplate)
	if len(blocks) == 0 {
		return nil, ErrUnrecognizedFormat
	}

	stmt := &models.Statement{Bank: models.BankTinkoff}
	for _, block := range blocks {
		tx, err := p.parseBlock(block)
		if err != nil {
			stmt.Skipped = append(stmt.Skipped, models.SkippedBlock{
				Raw:    block.Raw,
				Reason: err.Reason,
			})
			continue
		}
		stmt.Transactions = append(stmt.Transactions, tx)
	}
	return stmt, nil
}

func (p *TinkoffParser) parseBlock(block RawBlock) (models.Transaction, *MalformedRecordError) {
	opTime, err := parseOpTime(block.OpDate, block.OpTime)
	if err != nil {
		return models.Transaction{}, &MalformedRecordError{Raw: block.Raw, Reason: "invalid operation time"}
	}

	procDate, merr := extractProcessingDate(block.Tail)
	if merr != nil {
		merr.Raw = block.Raw
		return models.Transaction{}, merr
	}

	amounts, aerr := findAmounts(block.Tail)
	if aerr != nil || len(amounts) == 0 {
		return models.Transaction{}, &MalformedRecordError{Raw: block.Raw, Reason: "no amount found"}
	}

	description := p.describeTail(block.Tail)
	if description == "" {
		// Some extractions flow the description onto the preceding line.
		description = describeLead(block.Lead)
	}
	if len([]rune(description)) < 5 {
		return models.Transaction{}, &MalformedRecordError{Raw: block.Raw, Reason: "missing description"}
	}

	tx := models.Transaction{
		Description:   description,
		OperationTime: opTime,
		ProcessedDate: procDate,
		CardSuffix:    extractCardSuffix(block.Tail),
	}
	applyAmounts(&tx, amounts)
	if tx.Amount.IsZero() {
		return models.Transaction{}, &MalformedRecordError{Raw: block.Raw, Reason: "zero amount"}
	}
	return tx, nil
}

// describeTail takes the text after the last amount (and card mask) in the
// block as the description.
func (p *TinkoffParser) describeTail(tail string) string {
	cut := 0
	if locs := signedAmountPattern.FindAllStringIndex(tail, -1); locs != nil {
		cut = locs[len(locs)-1][1]
	}
	rest := tail[cut:]
	if loc := cardSuffixPattern.FindStringIndex(rest); loc != nil {
		rest = rest[loc[1]:]
	}

	var kept []string
	for _, line := range strings.Split(rest, "\n") {
		skip := false
		for _, kw := range tinkoffHeaderKeywords {
			if strings.Contains(line, kw) {
				skip = true
				break
			}
		}
		if !skip {
			kept = append(kept, line)
		}
	}
	return collapseSpaces(strings.Join(kept, " "))
}
