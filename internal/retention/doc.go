// Package retention decides which artifacts survive cleanup and applies the
// decision. The policy: exactly one latest dated report is kept, all other
// dated reports and every image are deleted, and everything else is inert.
// Planning is pure; execution is best-effort per item and supports a dry-run
// mode whose output matches live mode line for line.
package retention
