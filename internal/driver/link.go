package driver

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"thetac/internal/ast"
	"thetac/internal/buildpipeline"
	"thetac/internal/diag"
	"thetac/internal/project"
	"thetac/internal/source"
	"thetac/internal/trace"
)

var findCapsuleName = project.FindCapsuleName

// ResolveLink returns the Link for capsule name, building the capsule on
// first request. It is the parser's link-resolve capability.
//
//   - resolved in cache: the cached Link, no re-parse;
//   - in progress: a cycle; the same Link is returned as a forward
//     reference (Value is filled when the outer build finishes) and a
//     cycle error is recorded;
//   - not in the index: an error and a fresh placeholder, not cached, so
//     every importer gets its own error;
//   - otherwise the capsule is built and cached.
func (c *Compiler) ResolveLink(name string, at source.Span) *ast.Link {
	c.mu.Lock()
	if l, ok := c.links[name]; ok {
		state := l.State
		cycle := c.cyclePathLocked(name)
		c.mu.Unlock()

		switch state {
		case ast.LinkInProgress:
			c.reportCycle(name, at, cycle)
		default:
			trace.Point(c.tracer, trace.ScopeLink, "link:"+name, c.currentSpan(), "cached "+state.String())
		}
		return l
	}
	importer := c.currentCapsuleLocked()
	c.mu.Unlock()

	idx, err := c.Index("")
	if err != nil {
		c.logger.Warn("capsule discovery failed", "error", err)
	}
	path, ok := idx.Resolve(name)
	if !ok {
		c.bag.Add(diag.NewError(diag.ProjUnresolvedCapsule, at, fmt.Sprintf("unresolved capsule %q", name)).WithCapsule(importer))
		trace.Error(c.tracer, trace.ScopeLink, "link:"+name, c.currentSpan(), "unresolved, linked from "+cmp.Or(importer, "entry"))
		return ast.NewPlaceholderLink(name, at)
	}

	link, created := c.beginLink(name, path, at)
	if !created {
		// уже в кэше: либо собран, либо строится выше по стеку
		return link
	}
	if dups := idx.Duplicates(name); len(dups) > 0 {
		c.reportDuplicate(name, path, at, dups, importer)
	}

	buildpipeline.Emit(c.opts.Progress, buildpipeline.Event{File: path, Capsule: name, Stage: buildpipeline.StageLink, Status: buildpipeline.StatusWorking})
	if _, buildErr := c.buildLink(link); buildErr != nil {
		c.bag.Add(diag.NewError(diag.IOLoadFileError, at, fmt.Sprintf("capsule %q: %v", name, buildErr)).WithCapsule(importer))
	}
	return link
}

// beginLink stores an InProgress link for name. created is false when the
// name was already cached; the existing link is returned as is.
func (c *Compiler) beginLink(name, path string, at source.Span) (link *ast.Link, created bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.links[name]; ok {
		return l, false
	}
	l := &ast.Link{Capsule: name, Path: path, State: ast.LinkInProgress, Sp: at}
	c.links[name] = l
	c.chain = append(c.chain, name)
	c.publishStatusLocked()
	return l, true
}

// finishLink settles a link registered by beginLink. A link that is already
// resolved is left alone.
func (c *Compiler) finishLink(l *ast.Link, src *ast.Source, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := slices.Index(c.chain, l.Capsule); i >= 0 {
		c.chain = slices.Delete(c.chain, i, i+1)
		c.publishStatusLocked()
	}
	if l.State == ast.LinkResolved {
		return
	}
	if err != nil || src == nil {
		l.State = ast.LinkUnresolved
		return
	}
	l.Value = src
	l.State = ast.LinkResolved
	c.order = append(c.order, l.Capsule)
}

func (c *Compiler) resolvedValue(l *ast.Link) (*ast.Source, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return l.Value, l.State == ast.LinkResolved
}

// finalize closes the run: any link still in progress can never complete.
func (c *Compiler) finalize() {
	c.mu.Lock()
	var stuck []*ast.Link
	for _, l := range c.links {
		if l.State == ast.LinkInProgress {
			l.State = ast.LinkUnresolved
			stuck = append(stuck, l)
		}
	}
	c.chain = c.chain[:0]
	c.mu.Unlock()

	slices.SortFunc(stuck, func(a, b *ast.Link) int { return strings.Compare(a.Capsule, b.Capsule) })
	for _, l := range stuck {
		trace.Error(c.tracer, trace.ScopeLink, "link:"+l.Capsule, c.currentSpan(), "never finished")
		c.bag.Add(diag.NewError(diag.ProjUnfinishedCapsule, l.Sp,
			fmt.Sprintf("capsule %q was never finished building", l.Capsule)).WithCapsule(l.Capsule))
	}
}

// cyclePathLocked: "A -> B -> A", пусто если name сейчас не строится
func (c *Compiler) cyclePathLocked(name string) []string {
	i := slices.Index(c.chain, name)
	if i < 0 {
		return nil
	}
	path := slices.Clone(c.chain[i:])
	return append(path, name)
}

// publishStatusLocked shows the build chain to heartbeats.
func (c *Compiler) publishStatusLocked() {
	c.status.Set(c.lane, strings.Join(c.chain, " > "))
}

func (c *Compiler) currentCapsuleLocked() string {
	if n := len(c.chain); n > 0 {
		return c.chain[n-1]
	}
	return ""
}

func (c *Compiler) reportCycle(name string, at source.Span, cycle []string) {
	importer := name
	if len(cycle) >= 2 {
		importer = cycle[len(cycle)-2]
	}
	trace.Error(c.tracer, trace.ScopeLink, "link:"+name, c.currentSpan(), "cycle "+strings.Join(cycle, " > "))
	if len(cycle) == 2 {
		c.bag.Add(diag.NewError(diag.ProjSelfLink, at, fmt.Sprintf("capsule %q links itself", name)).WithCapsule(importer))
		return
	}
	msg := fmt.Sprintf("link cycle: %s", strings.Join(cycle, " -> "))
	if len(cycle) == 0 {
		msg = fmt.Sprintf("link cycle through capsule %q", name)
	}
	c.bag.Add(diag.NewError(diag.ProjLinkCycle, at, msg).WithCapsule(importer))
}

func (c *Compiler) reportDuplicate(name, winner string, at source.Span, dups []string, importer string) {
	d := diag.NewError(diag.ProjDuplicateCapsule, at,
		fmt.Sprintf("capsule %q is declared in %d files; using %s", name, len(dups)+1, winner)).WithCapsule(importer)
	for _, p := range dups {
		d = d.WithNote(at, "also declared in "+p)
	}
	c.bag.Add(d)
}

// GetIfExistsParsedLinkAST returns the cached Link for name if it is resolved.
func (c *Compiler) GetIfExistsParsedLinkAST(name string) (*ast.Link, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.links[name]
	if !ok || !l.Resolved() {
		return nil, false
	}
	return l, true
}

// AddParsedLinkAST seeds the cache. A link with a Value and no state is
// treated as resolved. An existing entry is replaced.
func (c *Compiler) AddParsedLinkAST(name string, link *ast.Link) {
	if link == nil {
		return
	}
	if link.Capsule == "" {
		link.Capsule = name
	}
	if link.Value != nil && link.State == ast.LinkPending {
		link.State = ast.LinkResolved
	}
	c.mu.Lock()
	c.links[name] = link
	c.mu.Unlock()
}

// ParseCount reports how many times the capsule (or script path) was parsed.
func (c *Compiler) ParseCount(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.parses[key]
}

func (c *Compiler) resolvedNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.order)
}
