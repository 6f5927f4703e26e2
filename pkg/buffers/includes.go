package buffers

import (
	"strings"

	"github.com/stevensona/shader-toy-sub000/pkg/diagnostics"
	"github.com/stevensona/shader-toy-sub000/pkg/parser"
	"github.com/stevensona/shader-toy-sub000/pkg/shader"
	"github.com/stevensona/shader-toy-sub000/pkg/utils"
)

// inlineInclude replaces an #include directive with the processed code of
// the included file. The directive is stripped when the file cannot be used.
func (r *resolution) inlineInclude(file string, batch *diagnostics.Batch, p *parser.Parser, obj *parser.IncludeObject, rng parser.SourceRange) (int, bool) {
	line := obj.OriginalLine()

	path, err := r.provider.paths.MapUserPath(r.ctx, obj.Path, file)
	if err != nil {
		batch.Errorf(line, "cannot resolve include %q: %v", obj.Path, err)
		p.Mutate(rng, "")
		return -1, false
	}

	idx, ok := r.loadInclude(path, batch, line)
	if !ok {
		p.Mutate(rng, "")
		return -1, false
	}

	inc := r.includes[idx]
	p.MutateFrom(rng, strings.TrimSuffix(inc.Code, "\n"), shader.IncludeSource(idx), inc.LineMap)
	return idx, true
}

// loadInclude returns the index of the processed include for path, reading
// and processing it on first use. Failures are reported to batch at line.
func (r *resolution) loadInclude(path string, batch *diagnostics.Batch, line int) (int, bool) {
	if idx, ok := r.includeIndex[path]; ok {
		return idx, true
	}
	if r.includeActive[path] {
		batch.Errorf(line, "%s includes itself", path)
		return -1, false
	}

	code, err := r.provider.files.ReadFile(r.ctx, path)
	if err != nil {
		batch.Errorf(line, "failed to read include %s: %v", path, err)
		return -1, false
	}

	r.includeActive[path] = true
	defer delete(r.includeActive, path)

	incBatch := diagnostics.NewBatch(path)
	defer incBatch.Flush(r.provider.reporter)

	var nested []int
	p := parser.NewParser(code)
	for {
		obj, ok := p.Next()
		if !ok {
			break
		}
		rng, _ := p.LastObjectRange()

		switch o := obj.(type) {
		case *parser.IncludeObject:
			if child, ok := r.inlineInclude(path, incBatch, p, o, rng); ok {
				nested = appendUnique(nested, r.includeNested[child]...)
				nested = appendUnique(nested, child)
			}
			continue
		case *parser.ErrorObject:
			incBatch.Errorf(o.OriginalLine(), "%s", o.Message)
		default:
			incBatch.Warnf(obj.OriginalLine(), "%s is ignored inside an included file", describe(obj))
		}
		p.Mutate(rng, "")
	}

	stream := p.Stream()
	stripVersion(incBatch, stream)
	text := stream.Text()

	name := utils.UniqueName(utils.SanitizeIdentifier(utils.BaseName(path)), func(n string) bool { return r.includeNames[n] })
	r.includeNames[name] = true

	idx := len(r.includes)
	r.includes = append(r.includes, &shader.IncludeDefinition{
		Name:      name,
		File:      path,
		Code:      text,
		LineCount: utils.CountLines(strings.TrimSuffix(text, "\n")),
		LineMap:   stream.LineMap(),
	})
	r.includeIndex[path] = idx
	r.includeNested[idx] = nested
	return idx, true
}

func appendUnique(list []int, values ...int) []int {
	for _, v := range values {
		found := false
		for _, have := range list {
			if have == v {
				found = true
				break
			}
		}
		if !found {
			list = append(list, v)
		}
	}
	return list
}
