package parser

import (
	"regexp"
	"strings"

	"github.com/apetrov/zenimport/internal/models"
)

// YandexParser handles Yandex Bank account statements.
//
// The statement prints one block per operation:
//
//	Описание операции  ДД.ММ.ГГГГ в ЧЧ:ММ  ДД.ММ.ГГГГ  [*1234]  ±Сумма ₽  ±Сумма ₽
//
// The description precedes the operation stamp; the processing date, the
// optional masked card and two amounts (amount in the operation currency,
// then the amount actually settled on the account) follow it.
type YandexParser struct{}

func (p *YandexParser) BankName() string {
	return "Yandex Bank"
}

// Page furniture, document preamble and running totals that PyPDF-style
// extraction leaves inline with the transaction flow.
var yandexBoilerplate = []*regexp.Regexp{
	regexp.MustCompile(`Страница \d+ из \d+`),
	regexp.MustCompile(`Продолжение на следующей странице`),
	regexp.MustCompile(`Входящий остаток.*?₽`),
	regexp.MustCompile(`Исходящий остаток.*?₽`),
	regexp.MustCompile(`(?m)^\s*Яндекс Банк.*$`),
	regexp.MustCompile(`(?m)^\s*Выписка по.*$`),
	regexp.MustCompile(`(?m)^\s*Период:.*$`),
	regexp.MustCompile(`(?m)^\s*Номер счёта.*$`),
}

// headerKeywords mark column-header fragments that must never end up in a
// transaction description.
var headerKeywords = []string{
	"Описание операции",
	"Дата и время",
	"Дата обработки",
	"Сумма операции",
	"Сумма в валюте",
	"МСК",
	"Страница",
}

func (p *YandexParser) Parse(text string) (*models.Statement, error) {
	blocks := tokenize(text, opStampLoose, yandexBoilerplate)
	if len(blocks) == 0 {
		return nil, ErrUnrecognizedFormat
	}

	stmt := &models.Statement{Bank: models.BankYandex}
	leadAmounts := leadAmountLayout(blocks)
	for _, block := range blocks {
		tx, err := p.parseBlock(block, leadAmounts)
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

func (p *YandexParser) parseBlock(block RawBlock, leadAmounts bool) (models.Transaction, *MalformedRecordError) {
	opTime, err := parseOpTime(block.OpDate, block.OpTime)
	if err != nil {
		return models.Transaction{}, &MalformedRecordError{Raw: block.Raw, Reason: "invalid operation time"}
	}

	procDate, merr := extractProcessingDate(block.Tail)
	if merr != nil {
		merr.Raw = block.Raw
		return models.Transaction{}, merr
	}

	// The amount region is fixed by the statement's layout. A block's tail
	// runs up to the next stamp, so in the amount-before-stamp layout it
	// already contains the following record's amount; scanning it there
	// would attribute that amount to this record.
	amountRegion := block.Tail
	if leadAmounts {
		amountRegion = block.Lead
	}
	amounts, aerr := findAmounts(amountRegion)
	if aerr != nil || len(amounts) == 0 {
		return models.Transaction{}, &MalformedRecordError{Raw: block.Raw, Reason: "no amount found"}
	}

	description := describeLead(block.Lead)
	if len([]rune(description)) < 5 {
		return models.Transaction{}, &MalformedRecordError{Raw: block.Raw, Reason: "missing description"}
	}

	tx := models.Transaction{
		Description:   description,
		OperationTime: opTime,
		ProcessedDate: procDate,
		CardSuffix:    extractCardSuffix(amountRegion),
	}
	applyAmounts(&tx, amounts)
	if tx.Amount.IsZero() {
		return models.Transaction{}, &MalformedRecordError{Raw: block.Raw, Reason: "zero amount"}
	}
	return tx, nil
}

// leadAmountLayout reports whether the statement prints amounts before the
// operation stamp instead of after it. The first block decides: its lead is
// the only one with no leftovers from a preceding record, so an amount
// there can only belong to the first record itself. The column order is a
// property of the whole document, never of a single row.
func leadAmountLayout(blocks []RawBlock) bool {
	amounts, err := findAmounts(blocks[0].Lead)
	return err == nil && len(amounts) > 0
}

// describeLead turns the text preceding an operation stamp into a clean
// description. The lead starts right after the previous record's stamp, so
// besides column-header fragments it can carry that record's processing
// date, card mask and amounts; all of those are stripped before the
// whitespace is collapsed.
func describeLead(lead string) string {
	var kept []string
	for _, line := range strings.Split(lead, "\n") {
		if isHeaderLine(line) {
			continue
		}
		kept = append(kept, line)
	}
	description := strings.Join(kept, " ")
	description = signedAmountPattern.ReplaceAllString(description, "")
	description = processingDatePattern.ReplaceAllString(description, "")
	description = cardSuffixPattern.ReplaceAllString(description, "")
	return collapseSpaces(description)
}

func isHeaderLine(line string) bool {
	for _, kw := range headerKeywords {
		if strings.Contains(line, kw) {
			return true
		}
	}
	return false
}
