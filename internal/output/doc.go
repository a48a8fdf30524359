// Package output renders vault command results for humans and for scripts.
//
// Every command writes through a Printer. With --json the Printer emits
// indented JSON objects; otherwise it prints lipgloss-styled text that
// falls back to plain text when stdout is not a terminal:
//
//	printer := output.NewPrinter(cmd.OutOrStdout(), jsonFlag, output.IsTTY(cmd.OutOrStdout()))
//	printer.Changes(entries)
//	printer.Error(err)
//
// # Exit Codes
//
//	output.ExitSuccess     // 0
//	output.ExitUserError   // 1: bad args, bad config, not a vault
//	output.ExitSystemError // 2: git missing or failing, I/O, unparsable status
//	output.ExitConflict    // 3: existing repository fails its status check
//
// FromError maps vault, git and runner errors onto these codes, so commands
// can return domain errors unchanged and let main decide the exit status.
package output
