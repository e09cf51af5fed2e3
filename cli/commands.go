package cli

var (
	Version   = ""
	CommitSHA = ""
)

// Globals defines global flags available to all commands.
type Globals struct {
	Telemetry bool   `help:"Show timing telemetry for operations."`
	Config    string `help:"Path to a YAML config file with command defaults." type:"path"`
}

type Commands struct {
	Globals

	Check    CheckCmd    `cmd:"" help:"Parse, check and resolve a journal file."`
	Tb       TbCmd       `cmd:"" help:"Print a trial balance for a journal file."`
	Ledger   LedgerCmd   `cmd:"" help:"Print the ledger records of one account key."`
	Format   FormatCmd   `cmd:"" help:"Format a journal file to canonical notation."`
	Convert  ConvertCmd  `cmd:"" help:"Convert a tabular accounting CSV export to journal notation."`
	Accounts AccountsCmd `cmd:"" help:"Manage the account metadata table."`
}
