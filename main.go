package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/apetrov/zenimport/internal/analytics"
	"github.com/apetrov/zenimport/internal/config"
	"github.com/apetrov/zenimport/internal/extractor"
	"github.com/apetrov/zenimport/internal/logger"
	"github.com/apetrov/zenimport/internal/models"
	"github.com/apetrov/zenimport/internal/normalize"
	"github.com/apetrov/zenimport/internal/parser"
	"github.com/apetrov/zenimport/internal/reconcile"
	"github.com/apetrov/zenimport/internal/report"
	"github.com/apetrov/zenimport/internal/zenmoney"
)

const version = "1.0.0"

const dateFlagLayout = "2006-01-02"

func main() {
	// .env is optional; a missing file is not an error.
	_ = godotenv.Load()

	log := logger.New()
	ctx := logger.WithContext(context.Background(), log)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "import-transactions", "import":
		runImport(ctx, log, os.Args[2:])
	case "delete":
		runDelete(ctx, log, os.Args[2:])
	case "list-accounts":
		runListAccounts(ctx, log, os.Args[2:])
	case "export":
		runExport(ctx, log, os.Args[2:])
	case "analytics":
		runAnalytics(ctx, log, os.Args[2:])
	case "version", "--version":
		fmt.Printf("zenimport v%s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("ZenMoney bank statement importer")
	fmt.Println("\nUsage:")
	fmt.Println("  zenimport <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  import-transactions   Import transactions from a PDF bank statement")
	fmt.Println("  delete                Delete ledger transactions by account and/or date range")
	fmt.Println("  list-accounts         List ledger accounts")
	fmt.Println("  export                Export ledger transactions to CSV")
	fmt.Println("  analytics             Build or serve the spending analytics page")
	fmt.Println("  help                  Show this help message")
	fmt.Println("\nThe ZenMoney token is taken from --token, ZEN_TOKEN, or a .env file.")
	fmt.Println("Run 'zenimport <command> -h' for command options.")
}

func runImport(ctx context.Context, log zerolog.Logger, args []string) {
	fs := newFlagSet("import-transactions")
	account := fs.String("account", "", "Ledger account name, e.g. \"yandex bank\" (required)")
	bank := fs.String("bank", "", "Bank type: yandex, tinkoff (auto-detected if omitted)")
	dryRun := fs.Bool("dry-run", false, "Preview transactions without writing to the ledger")
	yes := fs.Bool("yes", false, "Skip the confirmation prompt")
	token := fs.String("token", "", "ZenMoney API token (overrides ZEN_TOKEN)")
	fs.Parse(args)

	if fs.NArg() != 1 || *account == "" {
		fmt.Fprintln(os.Stderr, "usage: zenimport import-transactions <statement.pdf> --account NAME [--dry-run]")
		os.Exit(1)
	}
	path := fs.Arg(0)

	cfg, err := config.Load(*token)
	if err != nil {
		log.Fatal().Err(err).Msg("configuration error")
	}

	text, err := extractor.ExtractText(path)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("PDF extraction failed")
	}

	bankType := models.BankType(*bank)
	if bankType == "" {
		bankType, err = parser.AutoDetect(text)
		if err != nil {
			log.Fatal().Err(err).Msg("bank auto-detection failed")
		}
		log.Info().Str("bank", string(bankType)).Msg("auto-detected bank")
	}

	p, err := parser.New(bankType)
	if err != nil {
		log.Fatal().Err(err).Msg("unknown bank type")
	}

	stmt, err := p.Parse(text)
	if err != nil {
		// Covers ErrUnrecognizedFormat: no remote calls are attempted.
		log.Fatal().Err(err).Str("bank", p.BankName()).Msg("statement parsing failed")
	}
	for _, skipped := range stmt.Skipped {
		log.Warn().Str("reason", skipped.Reason).Str("block", truncate(skipped.Raw, 100)).Msg("skipped malformed block")
	}

	normalized := normalize.Normalize(stmt.Transactions, *account, cfg.Currency)
	records := normalize.Deduplicate(normalized)
	duplicates := len(normalized) - len(records)

	log.Info().
		Int("parsed", len(normalized)).
		Int("duplicates", duplicates).
		Int("malformed", len(stmt.Skipped)).
		Msg("statement parsed")

	engine := reconcile.NewEngine(zenmoney.NewClient(cfg))

	if !*dryRun && !*yes {
		if !confirm(fmt.Sprintf("Create %d transactions on account %q?", len(records), *account)) {
			fmt.Println("Cancelled.")
			return
		}
	}

	result, err := engine.Import(ctx, records, *account, *dryRun)
	if err != nil {
		log.Fatal().Err(err).Msg("import failed")
	}

	if *dryRun {
		printPreview(result.Records)
		fmt.Printf("%s previewed, 0 created (%d skipped: %s, %d malformed)\n",
			countNoun(result.Previewed, "transaction"), duplicates+len(stmt.Skipped),
			countNoun(duplicates, "duplicate"), len(stmt.Skipped))
		fmt.Println("Run again without --dry-run to create them.")
		return
	}
	fmt.Printf("%s created, %d skipped (%s, %d malformed)\n",
		countNoun(result.Created, "transaction"), duplicates+len(stmt.Skipped),
		countNoun(duplicates, "duplicate"), len(stmt.Skipped))
}

func runDelete(ctx context.Context, log zerolog.Logger, args []string) {
	fs := newFlagSet("delete")
	account := fs.String("account", "", "Delete only transactions of this account")
	startDate := fs.String("start-date", "", "Start date, YYYY-MM-DD (inclusive)")
	endDate := fs.String("end-date", "", "End date, YYYY-MM-DD (inclusive)")
	all := fs.Bool("all", false, "Delete ALL transactions (exclusive with other filters)")
	yes := fs.Bool("yes", false, "Skip the confirmation prompt")
	token := fs.String("token", "", "ZenMoney API token (overrides ZEN_TOKEN)")
	fs.Parse(args)

	cfg, err := config.Load(*token)
	if err != nil {
		log.Fatal().Err(err).Msg("configuration error")
	}

	filter := models.DeletionFilter{AccountName: *account, All: *all}
	if filter.StartDate, err = parseDateFlag(*startDate); err != nil {
		log.Fatal().Err(err).Msg("invalid --start-date")
	}
	if filter.EndDate, err = parseDateFlag(*endDate); err != nil {
		log.Fatal().Err(err).Msg("invalid --end-date")
	}
	if err := filter.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid deletion filter")
	}

	if !*yes {
		prompt := "Delete the matching ledger transactions?"
		if *all {
			prompt = "WARNING: this deletes ALL ledger transactions. Continue?"
		}
		if !confirm(prompt) {
			fmt.Println("Cancelled.")
			return
		}
	}

	engine := reconcile.NewEngine(zenmoney.NewClient(cfg))
	result, err := engine.Delete(ctx, filter)
	if err != nil {
		log.Fatal().Err(err).Msg("deletion failed")
	}

	fmt.Printf("%s deleted (%d matched, %d failed)\n",
		countNoun(result.Deleted, "transaction"), result.Matched, len(result.FailedIDs))
	// Partial failures are reported, not fatal: exit status stays zero.
	for _, id := range result.FailedIDs {
		fmt.Printf("  failed: %s\n", id)
	}
}

func runListAccounts(ctx context.Context, log zerolog.Logger, args []string) {
	fs := newFlagSet("list-accounts")
	token := fs.String("token", "", "ZenMoney API token (overrides ZEN_TOKEN)")
	fs.Parse(args)

	cfg, err := config.Load(*token)
	if err != nil {
		log.Fatal().Err(err).Msg("configuration error")
	}

	client := zenmoney.NewClient(cfg)
	accounts, err := client.ListAccounts(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to list accounts")
	}

	fmt.Printf("%-30s %-40s %-8s %s\n", "Name", "ID", "Currency", "Balance")
	fmt.Println(strings.Repeat("-", 92))
	for _, a := range accounts {
		fmt.Printf("%-30s %-40s %-8s %s\n", a.Title, a.ID, a.Currency, a.Balance.StringFixed(2))
	}
	fmt.Printf("\n%s\n", countNoun(len(accounts), "account"))
}

func runExport(ctx context.Context, log zerolog.Logger, args []string) {
	fs := newFlagSet("export")
	output := fs.String("output", "", "Output CSV file path (required)")
	account := fs.String("account", "", "Export only transactions of this account")
	startDate := fs.String("start-date", "", "Start date, YYYY-MM-DD (inclusive)")
	endDate := fs.String("end-date", "", "End date, YYYY-MM-DD (inclusive)")
	token := fs.String("token", "", "ZenMoney API token (overrides ZEN_TOKEN)")
	fs.Parse(args)

	if *output == "" {
		fmt.Fprintln(os.Stderr, "usage: zenimport export --output PATH [--account NAME] [--start-date D] [--end-date D]")
		os.Exit(1)
	}

	cfg, err := config.Load(*token)
	if err != nil {
		log.Fatal().Err(err).Msg("configuration error")
	}

	client := zenmoney.NewClient(cfg)
	transactions, titles, err := fetchFiltered(ctx, client, *account, *startDate, *endDate)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to fetch transactions")
	}

	w := &report.CSVWriter{AccountTitles: titles}
	if err := w.WriteToFile(*output, transactions); err != nil {
		log.Fatal().Err(err).Msg("CSV write failed")
	}
	fmt.Printf("%s exported to %s\n", countNoun(len(transactions), "transaction"), *output)
}

func runAnalytics(ctx context.Context, log zerolog.Logger, args []string) {
	fs := newFlagSet("analytics")
	output := fs.String("output", "analytics.html", "Output HTML file path")
	listen := fs.String("listen", "", "Serve the report over HTTP on this address instead of writing a file, e.g. :8080")
	account := fs.String("account", "", "Limit to transactions of this account")
	startDate := fs.String("start-date", "", "Start date, YYYY-MM-DD (inclusive)")
	endDate := fs.String("end-date", "", "End date, YYYY-MM-DD (inclusive)")
	topN := fs.Int("top", 5, "Number of top categories; the rest is bucketed as remainder")
	token := fs.String("token", "", "ZenMoney API token (overrides ZEN_TOKEN)")
	fs.Parse(args)

	cfg, err := config.Load(*token)
	if err != nil {
		log.Fatal().Err(err).Msg("configuration error")
	}

	client := zenmoney.NewClient(cfg)
	transactions, _, err := fetchFiltered(ctx, client, *account, *startDate, *endDate)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to fetch transactions")
	}

	rep := analytics.Build(transactions, *topN)

	if *listen != "" {
		log.Info().Str("addr", *listen).Msg("serving analytics")
		if err := analytics.NewServer(rep).Listen(*listen); err != nil {
			log.Fatal().Err(err).Msg("analytics server failed")
		}
		return
	}

	if err := rep.RenderToFile(*output); err != nil {
		log.Fatal().Err(err).Msg("report write failed")
	}
	fmt.Printf("Analytics for %s written to %s\n", countNoun(len(transactions), "transaction"), *output)
}

// fetchFiltered lists ledger transactions scoped to an optional account
// name and inclusive date range, and returns account id -> title mapping
// for display.
func fetchFiltered(ctx context.Context, client *zenmoney.Client, accountName, startDate, endDate string) ([]models.RemoteTransaction, map[string]string, error) {
	start, err := parseDateFlag(startDate)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid --start-date: %w", err)
	}
	end, err := parseDateFlag(endDate)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid --end-date: %w", err)
	}

	accounts, err := client.ListAccounts(ctx)
	if err != nil {
		return nil, nil, err
	}
	titles := make(map[string]string, len(accounts))
	accountID := ""
	for _, a := range accounts {
		titles[a.ID] = a.Title
		if accountName != "" && strings.EqualFold(a.Title, accountName) {
			accountID = a.ID
		}
	}
	if accountName != "" && accountID == "" {
		return nil, nil, &reconcile.UnknownAccountError{Name: accountName}
	}

	all, err := client.ListTransactions(ctx, accountID)
	if err != nil {
		return nil, nil, err
	}

	var out []models.RemoteTransaction
	for _, t := range all {
		if start != nil && t.Date.Before(*start) {
			continue
		}
		if end != nil && t.Date.After(*end) {
			continue
		}
		out = append(out, t)
	}
	return out, titles, nil
}

func parseDateFlag(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateFlagLayout, s)
	if err != nil {
		return nil, fmt.Errorf("expected YYYY-MM-DD, got %q", s)
	}
	return &t, nil
}

func printPreview(records []models.Transaction) {
	const maxShown = 10
	fmt.Println("\n=== TRANSACTION PREVIEW (dry-run) ===")
	for i, tx := range records {
		if i == maxShown {
			fmt.Printf("... and %d more\n", len(records)-maxShown)
			break
		}
		fmt.Printf("%d. %s | %s | %s %s\n",
			i+1,
			tx.ProcessedDate.Format(dateFlagLayout),
			truncate(tx.Description, 50),
			tx.Amount.StringFixed(2),
			tx.Currency,
		)
	}
	fmt.Println()
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ExitOnError)
}

// countNoun formats a count with its noun, singular when the count is 1:
// "1 transaction", "3 transactions".
func countNoun(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
