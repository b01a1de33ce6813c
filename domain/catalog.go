package domain

// Catalog is the immutable discovery snapshot one run operates on. Entities
// are recorded unfiltered; Repositories only contains what survived the
// repository filter, and Refs holds the branches and tags of those
// repositories keyed by full name.
type Catalog struct {
	Entities     []Entity
	Repositories []Repository
	Refs         map[string][]Ref
}

// Targets flattens the catalog into the per-ref units of work, in
// discovery order.
func (c *Catalog) Targets() []TargetRef {
	var targets []TargetRef
	for _, repo := range c.Repositories {
		for _, ref := range c.Refs[repo.FullName] {
			targets = append(targets, TargetRef{
				Entity:     repo.Owner,
				Repository: repo,
				Ref:        ref,
			})
		}
	}
	return targets
}

// RefCount returns the total number of refs across all repositories.
func (c *Catalog) RefCount() int {
	n := 0
	for _, refs := range c.Refs {
		n += len(refs)
	}
	return n
}

// CountEntities returns how many catalog entities match the login and kind.
func (c *Catalog) CountEntities(login string, kind EntityKind) int {
	n := 0
	for _, e := range c.Entities {
		if e.Login == login && e.Kind == kind {
			n++
		}
	}
	return n
}

// CountRepositories returns how many surviving repositories carry the
// full name.
func (c *Catalog) CountRepositories(fullName string) int {
	n := 0
	for _, r := range c.Repositories {
		if r.FullName == fullName {
			n++
		}
	}
	return n
}

// CountRefsForPath returns how many catalog refs materialize at the given
// base path relative to the output root. A branch and a tag sharing a name
// both map to the same directory and therefore count twice.
func (c *Catalog) CountRefsForPath(relPath string) int {
	n := 0
	for _, repo := range c.Repositories {
		for _, ref := range c.Refs[repo.FullName] {
			t := TargetRef{Entity: repo.Owner, Repository: repo, Ref: ref}
			if BasePath(t) == relPath {
				n++
			}
		}
	}
	return n
}
