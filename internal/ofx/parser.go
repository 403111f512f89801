// Package ofx imports purchases from OFX/QFX bank and credit card statements.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"

	"github.com/Veraticus/spend-sage/internal/model"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Options controls how statement lines become purchase events.
type Options struct {
	// UserID owns every produced event.
	UserID string
	// Platform overrides the site derived from the merchant name.
	Platform string
}

// Parser converts OFX statements into product events.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new OFX parser.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// preprocessOFX fixes common formatting issues in OFX files.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be upper case
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML-style files sometimes drop the closing bracket of a bare tag
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

// ParseEvents reads a statement and returns one event per debit. Credits,
// refunds and zero-amount lines are skipped since they are not purchases.
func (p *Parser) ParseEvents(ctx context.Context, reader io.Reader, opts Options) ([]model.ProductEvent, error) {
	if opts.UserID == "" {
		return nil, fmt.Errorf("user ID is required")
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var events []model.ProductEvent
	var skipped int

	collect := func(list *ofxgo.TransactionList, accountID string) {
		if list == nil {
			return
		}
		for _, tx := range list.Transactions {
			event, ok := p.convertTransaction(tx, accountID, opts)
			if !ok {
				skipped++
				continue
			}
			events = append(events, event)
		}
	}

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			collect(stmt.BankTranList, string(stmt.BankAcctFrom.AcctID))
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			collect(stmt.BankTranList, string(stmt.CCAcctFrom.AcctID))
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.logger.Info("parsed OFX file",
		"events", len(events),
		"skipped", skipped)

	return events, nil
}

// convertTransaction maps one debit to an event.
func (p *Parser) convertTransaction(tx ofxgo.Transaction, accountID string, opts Options) (model.ProductEvent, bool) {
	amount, _ := tx.TrnAmt.Float64()
	if amount >= 0 {
		return model.ProductEvent{}, false
	}

	merchant := extractMerchantName(tx)
	if merchant == "" {
		return model.ProductEvent{}, false
	}

	title := merchant
	if memo := strings.TrimSpace(string(tx.Memo)); memo != "" && !isGenericDescription(memo) {
		title = memo
	}

	platform := opts.Platform
	if platform == "" {
		platform = platformFromMerchant(merchant)
	}

	return model.ProductEvent{
		UserID:       opts.UserID,
		SessionID:    "ofx:" + accountID,
		Platform:     platform,
		ProductTitle: title,
		Price:        -amount,
		Timestamp:    tx.DtPosted.Time.UTC(),
	}, true
}

// extractMerchantName tries to get a clean merchant name from OFX data.
func extractMerchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := string(tx.Name)
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}
	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"MC PURCHASE ",
		"DEBIT PURCHASE ",
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// leading "MM/DD "
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

// platformFromMerchant drops the order reference card processors append
// after '*', e.g. "AMAZON.COM*RT4Y7HG2".
func platformFromMerchant(merchant string) string {
	if i := strings.Index(merchant, "*"); i > 0 {
		merchant = merchant[:i]
	}
	return strings.TrimSpace(merchant)
}

func isGenericDescription(name string) bool {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}
