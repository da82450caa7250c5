package accounts

import "github.com/ledgerline/ccimport/internal/model"

// defaultRules is ordered narrowest first. File-name rules accept either a
// bare name or a path.
var defaultRules = []struct {
	pattern string
	account string
}{
	{`bank of america.*cash rewards visa.*`, "boa_cash"},
	{`bank of america.*amtrak world.*`, "boa_amtrak"},
	{`bank of america.*travel rewards visa.*`, "boa_travel"},
	{`bank of america.*alaska airlines.*`, "boa_alaska"},
	{`(.*/)?chase9999_.*`, "chase_hyatt"},
	{`(.*/)?chase9998_.*`, "chase_csp"},
	{`9997$`, "c1_venture"},
	{`(.*/)?creditcard_.*`, "bk_jetblue"},
	{`(.*/)?export_\d+\.csv$`, "pmcu_visa"},
	{`bank of america.*adv plus banking.*`, NotTracked},
}

// DefaultRules returns the built-in rule table used when the config file
// does not define one.
func DefaultRules() []Rule {
	rules := make([]Rule, len(defaultRules))
	for i, d := range defaultRules {
		r, err := NewRule(d.pattern, d.account)
		if err != nil {
			panic("bad default account rule: " + err.Error())
		}
		rules[i] = r
	}
	return rules
}

// DefaultResolver returns a Resolver over DefaultRules.
func DefaultResolver() *Resolver {
	return &Resolver{rules: DefaultRules()}
}

// DefaultAccounts returns one credit card account per key in the built-in
// rules, numbered from 1, for seeding a new store.
func DefaultAccounts() []model.Account {
	var accts []model.Account
	seen := make(map[string]bool)
	for _, d := range defaultRules {
		if d.account == NotTracked || seen[d.account] {
			continue
		}
		seen[d.account] = true
		accts = append(accts, model.Account{
			ID:    len(accts) + 1,
			Alias: d.account,
			Type:  model.AccountTypeCreditCard,
		})
	}
	return accts
}
