package zenmoney

// Wire types for the ZenMoney v8 diff API. The diff endpoint is a single
// POST that both returns the current state (accounts, instruments, users,
// tags, transactions) and accepts mutations: a transaction object with
// deleted=true is a deletion, a new id is a creation.

type diffRequest struct {
	CurrentClientTimestamp int64            `json:"currentClientTimestamp"`
	ServerTimestamp        int64            `json:"serverTimestamp"`
	Transaction            []apiTransaction `json:"transaction,omitempty"`
}

type diffResponse struct {
	ServerTimestamp int64            `json:"serverTimestamp"`
	Account         []apiAccount     `json:"account"`
	Instrument      []apiInstrument  `json:"instrument"`
	User            []apiUser        `json:"user"`
	Tag             []apiTag         `json:"tag"`
	Transaction     []apiTransaction `json:"transaction"`
}

type apiAccount struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Instrument int     `json:"instrument"`
	Balance    float64 `json:"balance"`
	Deleted    bool    `json:"deleted"`
}

type apiInstrument struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	ShortTitle string `json:"shortTitle"`
}

type apiUser struct {
	ID int `json:"id"`
}

type apiTag struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type apiTransaction struct {
	ID                  string   `json:"id"`
	Changed             int64    `json:"changed"`
	Created             int64    `json:"created"`
	User                int      `json:"user"`
	Deleted             bool     `json:"deleted"`
	IncomeInstrument    int      `json:"incomeInstrument"`
	IncomeAccount       *string  `json:"incomeAccount"`
	IncomeBankID        *string  `json:"incomeBankID"`
	Income              float64  `json:"income"`
	OutcomeInstrument   int      `json:"outcomeInstrument"`
	OutcomeAccount      *string  `json:"outcomeAccount"`
	OutcomeBankID       *string  `json:"outcomeBankID"`
	Outcome             float64  `json:"outcome"`
	Tag                 []string `json:"tag"`
	Merchant            *string  `json:"merchant"`
	Payee               *string  `json:"payee"`
	OriginalPayee       *string  `json:"originalPayee"`
	Comment             string   `json:"comment"`
	Date                string   `json:"date"`
	MCC                 *int     `json:"mcc"`
	ReminderMarker      *string  `json:"reminderMarker"`
	OpIncome            *float64 `json:"opIncome"`
	OpIncomeInstrument  *int     `json:"opIncomeInstrument"`
	OpOutcome           *float64 `json:"opOutcome"`
	OpOutcomeInstrument *int     `json:"opOutcomeInstrument"`
	Latitude            *float64 `json:"latitude"`
	Longitude           *float64 `json:"longitude"`
}

func (t apiTransaction) accountID() string {
	if t.IncomeAccount != nil && *t.IncomeAccount != "" {
		return *t.IncomeAccount
	}
	if t.OutcomeAccount != nil {
		return *t.OutcomeAccount
	}
	return ""
}
