package hlots

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"

	"github.com/dbeal/hlots/date"
)

// Hledger invokes the external hledger binary to parse journal files. It is
// the only collaborator holding journal syntax knowledge: this package
// consumes the structured JSON it emits and pipes generated transactions
// back through it for validation.
type Hledger struct {
	Files []string // journal files, empty to let hledger use its default
}

// filesArgs returns the -f arguments selecting the journal files.
func (h Hledger) filesArgs() []string {
	args := make([]string, 0, 2*len(h.Files))
	for _, f := range h.Files {
		args = append(args, "-f", f)
	}
	return args
}

// run executes hledger with the given arguments and returns its stdout.
func (h Hledger) run(stdin string, args ...string) ([]byte, error) {
	cmd := exec.Command("hledger", args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("hledger %s: %w: %s", strings.Join(args, " "), err, stderr.String())
	}
	return stdout.Bytes(), nil
}

// Transactions returns the postings of one commodity, in journal order,
// with per-unit prices resolved. noDesc, when non-empty, excludes
// transactions whose description matches it.
func (h Hledger) Transactions(commodity, noDesc string) (Transactions, error) {
	args := append(h.filesArgs(), "print", "cur:"+commodity, "--output-format=json")
	if noDesc != "" {
		args = append(args, "not:desc:"+noDesc)
	}
	out, err := h.run("", args...)
	if err != nil {
		return nil, err
	}
	return parseTransactions(out, commodity)
}

// Commodities returns all commodities declared or used in the journals.
func (h Hledger) Commodities() ([]string, error) {
	out, err := h.run("", append(h.filesArgs(), "commodities")...)
	if err != nil {
		return nil, err
	}
	var commodities []string
	for _, line := range strings.Split(string(out), "\n") {
		if line != "" {
			commodities = append(commodities, line)
		}
	}
	return commodities, nil
}

// LastPrice returns the latest declared market price for the commodity, or
// nil when the journals carry none.
func (h Hledger) LastPrice(commodity string) (*Quote, error) {
	args := append(h.filesArgs(), "prices", "cur:"+commodity, "--infer-reverse-prices")
	out, err := h.run("", args...)
	if err != nil {
		return nil, err
	}
	return parseLastPrice(out)
}

// Print pipes a generated transaction through `hledger print --explicit`,
// validating it and returning its canonical form.
func (h Hledger) Print(journal string) (string, error) {
	out, err := h.run(journal, "-f-", "print", "--explicit")
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// parseTransactions extracts the commodity's postings from the JSON
// emitted by `hledger print --output-format=json`. Only amounts priced in
// another commodity are kept: a price is what makes a posting a buy or a
// sell of the commodity rather than a transfer.
func parseTransactions(data []byte, commodity string) (Transactions, error) {
	var jtxns []any
	if err := json.Unmarshal(data, &jtxns); err != nil {
		return nil, fmt.Errorf("cannot parse hledger json output: %w", err)
	}

	var txns Transactions
	for _, jtxn := range jtxns {
		txn, ok := jtxn.(map[string]any)
		if !ok {
			continue
		}
		day, err := date.Parse(jstring(txn["tdate"]))
		if err != nil {
			return nil, fmt.Errorf("cannot parse transaction date: %w", err)
		}
		jpostings, _ := txn["tpostings"].([]any)
		for _, jposting := range jpostings {
			posting, ok := jposting.(map[string]any)
			if !ok {
				continue
			}
			account := jstring(posting["paccount"])
			jamounts, _ := posting["pamount"].([]any)
			for _, jamount := range jamounts {
				t, err := parseAmount(jamount, day, account, commodity)
				if err != nil {
					return nil, err
				}
				if t != nil {
					txns = append(txns, *t)
				}
			}
		}
	}
	return txns, nil
}

// parseAmount converts one priced posting amount into a Transaction, or
// nil when the amount is for another commodity or carries no price.
func parseAmount(jamount any, day date.Date, account, commodity string) (*Transaction, error) {
	amount, ok := jamount.(map[string]any)
	if !ok || jstring(amount["acommodity"]) != commodity || amount["aprice"] == nil {
		return nil, nil
	}

	qtty, err := jsonpath.Get("$.aquantity.floatingPoint", jamount)
	if err != nil {
		return nil, fmt.Errorf("cannot read quantity of %s posting on %s: %w", commodity, day, err)
	}
	price, err := jsonpath.Get("$.aprice.contents.aquantity.floatingPoint", jamount)
	if err != nil {
		return nil, fmt.Errorf("cannot read price of %s posting on %s: %w", commodity, day, err)
	}
	baseCur, err := jsonpath.Get("$.aprice.contents.acommodity", jamount)
	if err != nil {
		return nil, fmt.Errorf("cannot read price currency of %s posting on %s: %w", commodity, day, err)
	}
	priceTag, err := jsonpath.Get("$.aprice.tag", jamount)
	if err != nil {
		return nil, fmt.Errorf("cannot read price type of %s posting on %s: %w", commodity, day, err)
	}

	quantity := Q(decimal.NewFromFloat(jfloat(qtty)))
	unitPrice := M(decimal.NewFromFloat(jfloat(price)), jstring(baseCur))
	if jstring(priceTag) == "TotalPrice" {
		// A total price on a zero quantity is corrupt input: fail loudly
		// rather than coerce it.
		if quantity.IsZero() {
			return nil, fmt.Errorf("posting of %s on %s has a total price but a zero quantity", commodity, day)
		}
		unitPrice = unitPrice.Div(quantity.Abs())
	}

	return &Transaction{Date: day, Price: unitPrice, Quantity: quantity, Account: account}, nil
}

func jstring(v any) string {
	s, _ := v.(string)
	return s
}

func jfloat(v any) float64 {
	f, _ := v.(float64)
	return f
}

var nonNumeric = regexp.MustCompile(`[^0-9.\-]`)

// parseLastPrice reads the last price directive from `hledger prices`
// output, lines of the form `P 2024-01-02 AAPL 187.15 USD`.
func parseLastPrice(out []byte) (*Quote, error) {
	var last string
	for _, line := range strings.Split(string(out), "\n") {
		if strings.TrimSpace(line) != "" {
			last = line
		}
	}
	if last == "" {
		return nil, nil
	}

	parts := strings.SplitN(last, " ", 4)
	if len(parts) < 4 {
		return nil, fmt.Errorf("cannot parse price directive %q", last)
	}
	day, err := date.Parse(parts[1])
	if err != nil {
		return nil, fmt.Errorf("cannot parse price directive %q: %w", last, err)
	}
	fields := strings.Fields(parts[3])
	if len(fields) < 2 {
		return nil, fmt.Errorf("cannot parse price directive %q", last)
	}
	price, err := decimal.NewFromString(nonNumeric.ReplaceAllString(fields[0], ""))
	if err != nil {
		return nil, fmt.Errorf("cannot parse price in directive %q: %w", last, err)
	}
	return &Quote{Date: day, Price: M(price, fields[len(fields)-1])}, nil
}
