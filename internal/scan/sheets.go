package scan

import "github.com/dkotenko/xlfind/internal/types"

// ResolveSheets maps the request's sheet policy onto the sheets a workbook
// actually has. SheetsFirst yields at most the first sheet, SheetsAll every
// sheet in workbook order, and SheetsNamed the requested names that exist,
// in request order, silently dropping the rest. An empty result means the
// file has nothing to scan and is reported by the caller.
func ResolveSheets(policy types.SheetPolicy, available []string) []string {
	switch policy.Mode {
	case types.SheetsFirst:
		if len(available) == 0 {
			return nil
		}
		return available[:1]
	case types.SheetsAll:
		return available
	case types.SheetsNamed:
		existing := make(map[string]bool, len(available))
		for _, name := range available {
			existing[name] = true
		}
		var resolved []string
		for _, name := range policy.Names {
			if existing[name] {
				resolved = append(resolved, name)
			}
		}
		return resolved
	}
	return nil
}
