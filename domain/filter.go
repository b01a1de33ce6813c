package domain

// RepoFilter decides which repositories take part in a run. A non-empty
// whitelist keeps only its members and makes the blacklist inert; otherwise
// blacklist members are dropped and everything else passes.
type RepoFilter struct {
	whitelist map[string]struct{}
	blacklist map[string]struct{}
}

// NewRepoFilter builds a filter from owner-qualified repository names.
func NewRepoFilter(whitelist, blacklist []string) *RepoFilter {
	f := &RepoFilter{
		whitelist: make(map[string]struct{}, len(whitelist)),
		blacklist: make(map[string]struct{}, len(blacklist)),
	}
	for _, name := range whitelist {
		f.whitelist[name] = struct{}{}
	}
	for _, name := range blacklist {
		f.blacklist[name] = struct{}{}
	}
	return f
}

// Keep reports whether the repository should be processed.
func (f *RepoFilter) Keep(fullName string) bool {
	if len(f.whitelist) > 0 {
		_, ok := f.whitelist[fullName]
		return ok
	}
	_, banned := f.blacklist[fullName]
	return !banned
}
