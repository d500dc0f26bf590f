// Package browse is C6: directory listing and recursive substring search
// over internal/fatvol, filling the shared cartridge RAM buffer with
// DirEntry records. Grounded on original_source's
// read_directory/scan_files/search_directory/entry_compare/stristr.
package browse

import (
	"sort"
	"strings"

	"a8picocart/firmware/config"
	"a8picocart/firmware/internal/cartram"
	"a8picocart/firmware/internal/fatvol"
)

// validExts is the extension allowlist for files shown in a listing or
// matched by search, matching original_source's is_valid_file.
var validExts = map[string]bool{"CAR": true, "ROM": true, "XEX": true, "ATR": true}

func extOf(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 {
		return ""
	}
	return name[i+1:]
}

func isValidFile(name string) bool {
	return validExts[strings.ToUpper(extOf(name))]
}

// joinPath appends name to a directory path without doubling the
// separator when path already ends in "/" (the root case).
func joinPath(path, name string) string {
	if strings.HasSuffix(path, "/") {
		return path + name
	}
	return path + "/" + name
}

// shortName picks the 8.3 alternate name when present, else the long name
// truncated to 12 characters, matching original_source's "no altname when
// lfn is 8.3" fallback.
func shortName(e fatvol.Entry) string {
	if e.ShortName != "" {
		return e.ShortName
	}
	if len(e.Name) > 12 {
		return e.Name[:12]
	}
	return e.Name
}

// ReadDirectory lists path's contents into ram, filtering hidden/system
// entries and non-cartridge-extension files, up to cartram.MaxDirEntries.
// Returns the entry count and "" on success, or (0, error-message) — the
// message text matching spec.md §7 exactly.
func ReadDirectory(vol fatvol.Volume, ram *cartram.Buffer, path string) (int, string) {
	if err := vol.Mount(); err != nil {
		return 0, "Can't read flash memory"
	}
	defer vol.Unmount()

	dir, err := vol.OpenDir(path)
	if err != nil {
		return 0, "Can't read directory"
	}
	defer dir.Close()

	ram.TakeForDirectory()
	count := 0
	for count < cartram.MaxDirEntries {
		entry, ok, err := dir.Next()
		if err != nil || !ok {
			break
		}
		if entry.SkipListing() {
			continue
		}
		if !entry.IsDir && !isValidFile(entry.Name) {
			continue
		}
		dst, _ := ram.DirEntryAt(count)
		dst.SetIsDir(entry.IsDir)
		dst.SetLongName(entry.Name)
		dst.SetShortName(shortName(entry))
		dst.SetFullPath("") // path only populated for search results
		count++
	}
	sortEntries(ram, count, false)
	return count, ""
}

// SearchDirectory recursively walks path looking for needle as a
// case-insensitive substring of each candidate's name, collecting matches
// into ram (up to config.SearchResultLimit(), never more than
// cartram.MaxDirEntries) with full_path populated so a
// match found anywhere under path can be opened directly. Returns the
// match count and "" on success, or (0, error-message).
func SearchDirectory(vol fatvol.Volume, ram *cartram.Buffer, path, needle string) (int, string) {
	if err := vol.Mount(); err != nil {
		return 0, "Problem searching flash"
	}
	defer vol.Unmount()

	ram.TakeForDirectory()
	count := 0
	if !scanFiles(vol, ram, &count, path, strings.ToLower(needle)) {
		return 0, "Problem searching flash"
	}
	sortEntries(ram, count, true)
	// reset the "scores" (isDir reused as relevance) back to 0, matching
	// original_source's final pass over the result set.
	for i := 0; i < count; i++ {
		e, _ := ram.DirEntryAt(i)
		e.SetIsDir(false)
	}
	return count, ""
}

// scanFiles is the recursive directory walker behind SearchDirectory.
// isDir on a collected DirEntry is temporarily repurposed as a 0/1
// relevance score (1 = needle matched at the very start of the name),
// exactly as original_source's scan_files does before entry_compare sorts
// on it and search_directory resets it.
func scanFiles(vol fatvol.Volume, ram *cartram.Buffer, count *int, path, needleLower string) bool {
	dir, err := vol.OpenDir(path)
	if err != nil {
		return true // matches original_source: f_opendir failure is silently skipped
	}
	defer dir.Close()

	limit := config.SearchResultLimit()
	if limit > cartram.MaxDirEntries {
		limit = cartram.MaxDirEntries
	}
	for *count < limit {
		entry, ok, err := dir.Next()
		if err != nil || !ok {
			break
		}
		if entry.SkipListing() {
			continue
		}
		if entry.IsDir {
			childPath := joinPath(path, shortName(entry))
			if len(childPath) >= 210 {
				continue // no room for path in a DirEntry's full_path field
			}
			if !scanFiles(vol, ram, count, childPath, needleLower) {
				return false
			}
			continue
		}
		if !isValidFile(entry.Name) {
			continue
		}
		pos := strings.Index(strings.ToLower(entry.Name), needleLower)
		if pos < 0 {
			continue
		}
		dst, _ := ram.DirEntryAt(*count)
		dst.SetIsDir(pos == 0) // relevance score, see doc comment above
		dst.SetLongName(entry.Name)
		dst.SetShortName(shortName(entry))
		dst.SetFullPath(path)
		*count++
	}
	return true
}

// sortEntries sorts the first n DirEntry records in ram. byScore orders by
// {relevance desc, name asc} for search results (entry_compare with isDir
// repurposed as score); otherwise it's the plain directory sort, dirs
// before files, then case-insensitive name (entry_compare as used by
// read_directory).
func sortEntries(ram *cartram.Buffer, n int, byScore bool) {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	get := func(i int) (cartram.DirEntryView, bool) {
		view, _ := ram.DirEntryAt(i)
		return view, view.IsDir()
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ea, scoreA := get(idx[a])
		eb, scoreB := get(idx[b])
		if byScore {
			if scoreA != scoreB {
				return scoreA // true (score 1) sorts first
			}
			return strings.ToLower(ea.LongName()) < strings.ToLower(eb.LongName())
		}
		if scoreA != scoreB {
			return scoreA // directories first
		}
		return strings.ToLower(ea.LongName()) < strings.ToLower(eb.LongName())
	})
	reorder(ram, idx)
}

// reorder physically rewrites ram's first len(idx) DirEntry records into
// the order idx describes — DirEntryView exposes no swap primitive beyond
// raw bytes, so sorting copies through a scratch slice once.
func reorder(ram *cartram.Buffer, idx []int) {
	scratch := make([][cartram.DirEntrySize]byte, len(idx))
	for i, from := range idx {
		view, _ := ram.DirEntryAt(from)
		copy(scratch[i][:], view.Raw())
	}
	for i := range scratch {
		view, _ := ram.DirEntryAt(i)
		copy(view.Raw(), scratch[i][:])
	}
}
