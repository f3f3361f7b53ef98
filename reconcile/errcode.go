package reconcile

import (
	"context"
	"fmt"

	"github.com/eneno295/multilang-tools/diffkeys"
	"github.com/eneno295/multilang-tools/errcode"
)

// SyncErrorCodes brings every target error-code file up to the source
// file's code set. Missing codes are translated sequentially and
// inserted into the section matching their source section; the file is
// then rebuilt with its sections numerically sorted.
func (e *Engine) SyncErrorCodes(ctx context.Context, req Request) ([]FileResult, error) {
	source, err := errcode.ParseFile(req.sourcePath())
	if err != nil {
		return nil, err
	}

	results := make([]FileResult, 0, len(req.Targets))
	for _, name := range req.Targets {
		res := e.syncErrorCodeFile(ctx, req, source, name)
		e.events.fileDone(res)
		results = append(results, res)
	}
	return results, nil
}

func (e *Engine) syncErrorCodeFile(ctx context.Context, req Request, source *errcode.File, name string) FileResult {
	raw, err := readFile(req.targetPath(name))
	if err != nil {
		return failedResult(name, err)
	}
	target := errcode.Parse(raw)

	d := diffkeys.Diff(source.Codes(), target.Codes())
	res := FileResult{File: name, Missing: d.Missing, Redundant: d.Redundant}
	if len(d.Missing) == 0 {
		res.Status = StatusSynced
		return res
	}

	e.events.fileStart(name, len(d.Missing))
	lang := langOf(name)

	values := make(map[string]string, len(d.Missing))
	for _, code := range d.Missing {
		entry, ok := source.Get(code)
		if !ok {
			continue
		}
		translated, err := e.provider.Translate(ctx, entry.Message, req.SourceLang, lang)
		e.events.key(name, code, err)
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", code, err))
			e.log.Warn().Str("file", name).Str("code", code).Err(err).Msg("translation failed")
			continue
		}
		values[code] = translated
		res.Translated++
	}

	if len(values) == 0 {
		res.Status = StatusFailed
		return res
	}

	errcode.InsertMissing(target, source, values)
	out := target.Render()

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

// OrganizeErrorCodes rebuilds the source file and every target file:
// misplaced entries move to the section their numeric prefix names,
// entries sort ascending within sections, headers and commas come out
// canonical. Codes whose section is ambiguous stay put and are
// reported.
func (e *Engine) OrganizeErrorCodes(req Request) ([]FileResult, error) {
	names := append([]string{req.SourceFile}, req.Targets...)
	results := make([]FileResult, 0, len(names))
	for _, name := range names {
		res := e.organizeErrorCodeFile(req, name)
		e.events.fileDone(res)
		results = append(results, res)
	}
	return results, nil
}

func (e *Engine) organizeErrorCodeFile(req Request, name string) FileResult {
	raw, err := readFile(req.targetPath(name))
	if err != nil {
		return failedResult(name, err)
	}

	out, cls := errcode.Organize(errcode.Parse(raw))
	res := FileResult{File: name, Moves: len(cls.Moves)}
	for _, amb := range cls.Ambiguous {
		res.Ambiguous = append(res.Ambiguous, amb.Code)
	}

	if out == raw {
		res.Status = StatusSynced
		return res
	}
	if req.DryRun {
		res.Status = StatusPending
		return res
	}

	if err := e.snapshot(req, name, []byte(raw)); err != nil {
		return failedResult(name, err)
	}
	if err := e.write(req.targetPath(name), out); err != nil {
		return failedResult(name, err)
	}
	res.Status = StatusUpdated
	return res
}

// StatusErrorCodes reports per-file sync statistics without writing.
func (e *Engine) StatusErrorCodes(req Request) ([]FileResult, error) {
	source, err := errcode.ParseFile(req.sourcePath())
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
		d := diffkeys.Diff(source.Codes(), errcode.Parse(raw).Codes())
		res := FileResult{File: name, Missing: d.Missing, Redundant: d.Redundant, Status: StatusSynced}
		if !d.InSync() {
			res.Status = StatusPending
		}
		results = append(results, res)
	}
	return results, nil
}
