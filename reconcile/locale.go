package reconcile

import (
	"context"
	"fmt"

	"github.com/eneno295/multilang-tools/diffkeys"
	"github.com/eneno295/multilang-tools/localefile"
)

// SyncLocales brings every target locale file up to the source file's
// key set: missing leaves are translated sequentially and spliced in
// at source-congruent positions. A missing source file aborts the
// whole batch; anything else is reported per file.
func (e *Engine) SyncLocales(ctx context.Context, req Request) ([]FileResult, error) {
	source, err := localefile.ParseFile(req.sourcePath())
	if err != nil {
		return nil, err
	}

	results := make([]FileResult, 0, len(req.Targets))
	for _, name := range req.Targets {
		res := e.syncLocaleFile(ctx, req, source, name)
		e.events.fileDone(res)
		results = append(results, res)
	}
	return results, nil
}

func (e *Engine) syncLocaleFile(ctx context.Context, req Request, source *localefile.File, name string) FileResult {
	raw, err := readFile(req.targetPath(name))
	if err != nil {
		return failedResult(name, err)
	}
	target := localefile.Parse(raw)

	d := diffkeys.Diff(source.Keys(), target.Keys())
	res := FileResult{File: name, Missing: d.Missing, Redundant: d.Redundant}
	if len(d.Missing) == 0 {
		res.Status = StatusSynced
		return res
	}

	e.events.fileStart(name, len(d.Missing))
	lang := langOf(name)

	// One translation call per key; a failure skips the key and moves on.
	values := make(map[string]string, len(d.Missing))
	for _, key := range d.Missing {
		entry, ok := source.Get(key)
		if !ok {
			continue
		}
		translated, err := e.provider.Translate(ctx, entry.Value, req.SourceLang, lang)
		e.events.key(name, key, err)
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", key, err))
			e.log.Warn().Str("file", name).Str("key", key).Err(err).Msg("translation failed")
			continue
		}
		values[key] = translated
		res.Translated++
	}

	if len(values) == 0 {
		res.Status = StatusFailed
		return res
	}

	out, ok := localefile.InsertMissing(target, source, values, d.Missing)
	if !ok {
		// The target has no structural parse: rebuild it from the
		// source's structure, keeping every value the target already had.
		merged := make(map[string]string, len(target.Entries)+len(values))
		for _, entry := range target.Entries {
			merged[entry.Key] = entry.Value
		}
		for key, value := range values {
			merged[key] = value
		}
		tree := localefile.Merge(source, merged)
		if tree == nil {
			res.Status = StatusFailed
			res.Errors = append(res.Errors, "source file has no structural parse, cannot rebuild target")
			return res
		}
		out = localefile.RenderTree(tree, target.Wrapper, localefile.DetectIndent(raw))
	}

	if err := e.snapshot(req, name, []byte(raw)); err != nil {
		return failedResult(name, err)
	}
	if err := e.write(req.targetPath(name), out); err != nil {
		return failedResult(name, err)
	}

	if res.Failed > 0 {
		res.Status = StatusPartial
	} else {
		res.Status = StatusUpdated
	}
	return res
}

// OrganizeLocales rebuilds the source file and every target file in
// canonical form: one key per line, double-quoted keys, comments
// reattached, no trailing commas. Already-canonical files are left
// untouched, so the operation is a fixed point.
func (e *Engine) OrganizeLocales(req Request) ([]FileResult, error) {
	names := append([]string{req.SourceFile}, req.Targets...)
	results := make([]FileResult, 0, len(names))
	for _, name := range names {
		res := e.organizeLocaleFile(req, name)
		e.events.fileDone(res)
		results = append(results, res)
	}
	return results, nil
}

func (e *Engine) organizeLocaleFile(req Request, name string) FileResult {
	raw, err := readFile(req.targetPath(name))
	if err != nil {
		return failedResult(name, err)
	}

	out := localefile.Parse(raw).Render()
	if out == raw {
		return FileResult{File: name, Status: StatusSynced}
	}
	if req.DryRun {
		return FileResult{File: name, Status: StatusPending}
	}

	if err := e.snapshot(req, name, []byte(raw)); err != nil {
		return failedResult(name, err)
	}
	if err := e.write(req.targetPath(name), out); err != nil {
		return failedResult(name, err)
	}
	return FileResult{File: name, Status: StatusUpdated}
}

// StatusLocales reports per-file sync statistics without writing.
func (e *Engine) StatusLocales(req Request) ([]FileResult, error) {
	source, err := localefile.ParseFile(req.sourcePath())
	if err != nil {
		return nil, err
	}

	results := make([]FileResult, 0, len(req.Targets))
	for _, name := range req.Targets {
		raw, err := readFile(req.targetPath(name))
		if err != nil {
			results = append(results, failedResult(name, err))
			continue
		}
		d := diffkeys.Diff(source.Keys(), localefile.Parse(raw).Keys())
		res := FileResult{File: name, Missing: d.Missing, Redundant: d.Redundant, Status: StatusSynced}
		if !d.InSync() {
			res.Status = StatusPending
		}
		results = append(results, res)
	}
	return results, nil
}
