package buffers

import (
	"github.com/stevensona/shader-toy-sub000/pkg/parser"
	"github.com/stevensona/shader-toy-sub000/pkg/shader"
	"github.com/stevensona/shader-toy-sub000/pkg/utils"
)

// resolveTextures turns the channel directives of a file into texture and
// audio inputs of buf. Shader files bound to a channel are resolved as
// buffers of their own first.
func (r *resolution) resolveTextures(state *fileState, buf *shader.BufferDefinition) error {
	for _, obj := range state.textures {
		line := obj.OriginalLine()

		switch obj.Kind {
		case shader.TextureSelf:
			r.bindSelf(state, buf, obj)

		case shader.TextureRemote:
			switch utils.ClassifyPath(obj.Path) {
			case utils.ContentImage:
				in := shader.NewTextureInput(obj.Index, obj.Path, shader.TextureRemote)
				in.Line = line
				r.bindTexture(state, buf, in)
			case utils.ContentAudio:
				r.bindAudio(state, buf, shader.AudioInput{Channel: obj.Index, File: obj.Path, FromURL: true, Line: line})
			case utils.ContentText:
				state.batch.Warnf(line, "remote shader %s cannot be used as a buffer on iChannel%d", obj.Path, obj.Index)
			default:
				state.batch.Warnf(line, "cannot tell what kind of file %s is, iChannel%d is left unbound", obj.Path, obj.Index)
			}

		default:
			if err := r.resolveLocal(state, buf, obj); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolveLocal binds a channel to a file next to the shader
func (r *resolution) resolveLocal(state *fileState, buf *shader.BufferDefinition, obj *parser.TextureObject) error {
	line := obj.OriginalLine()

	path, err := r.provider.paths.MapUserPath(r.ctx, obj.Path, state.file)
	if err != nil {
		state.batch.Errorf(line, "cannot resolve %q for iChannel%d: %v", obj.Path, obj.Index, err)
		return nil
	}

	switch utils.ClassifyPath(path) {
	case utils.ContentText:
		if path == state.file {
			r.bindSelf(state, buf, obj)
			return nil
		}
		return r.bindBuffer(state, buf, obj, path)

	case utils.ContentImage:
		in := shader.NewTextureInput(obj.Index, path, shader.TextureLocal)
		in.Line = line
		r.bindTexture(state, buf, in)

	case utils.ContentAudio:
		r.bindAudio(state, buf, shader.AudioInput{Channel: obj.Index, File: path, Line: line})

	default:
		state.batch.Warnf(line, "cannot tell what kind of file %s is, iChannel%d is left unbound", obj.Path, obj.Index)
	}
	return nil
}

// bindBuffer resolves the shader at path as a dependency and reads its
// output on the directive's channel
func (r *resolution) bindBuffer(state *fileState, buf *shader.BufferDefinition, obj *parser.TextureObject, path string) error {
	line := obj.OriginalLine()

	if !r.visited[path] {
		code, err := r.provider.files.ReadFile(r.ctx, path)
		if err != nil {
			if ctxErr := r.ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			state.batch.Errorf(line, "failed to read %s for iChannel%d: %v", obj.Path, obj.Index, err)
			return nil
		}
		if _, err := r.resolveBuffer(path, code); err != nil {
			return err
		}
	}

	in := shader.NewTextureInput(obj.Index, path, shader.TextureBuffer)
	in.Line = line
	if idx, ok := r.bufferIndex[path]; ok {
		in.BufferIndex = idx
		in.BufferName = r.buffers[idx].Name
	} else {
		r.backEdges = append(r.backEdges, backEdge{buffer: buf, channel: obj.Index, target: path})
	}
	r.bindTexture(state, buf, in)
	return nil
}

// bindSelf makes a channel read the buffer's own previous frame
func (r *resolution) bindSelf(state *fileState, buf *shader.BufferDefinition, obj *parser.TextureObject) {
	in := shader.NewTextureInput(obj.Index, state.file, shader.TextureSelf)
	in.Line = obj.OriginalLine()
	r.bindTexture(state, buf, in)

	buf.UsesSelf = true
	buf.SelfChannel = obj.Index
}

// bindTexture adds in to buf, replacing an earlier binding of its channel
func (r *resolution) bindTexture(state *fileState, buf *shader.BufferDefinition, in shader.TextureInput) {
	r.unbind(state, buf, in.Channel, in.Line)
	buf.TextureInputs = append(buf.TextureInputs, in)
}

// bindAudio adds in to buf, or drops it when audio input is disabled
func (r *resolution) bindAudio(state *fileState, buf *shader.BufferDefinition, in shader.AudioInput) {
	if !r.provider.opts.EnableAudioInput {
		state.batch.Warnf(in.Line, "audio input is disabled, %s on iChannel%d is ignored", in.File, in.Channel)
		return
	}
	r.unbind(state, buf, in.Channel, in.Line)
	buf.AudioInputs = append(buf.AudioInputs, in)
}

// unbind removes whatever is bound to channel, warning when something was
func (r *resolution) unbind(state *fileState, buf *shader.BufferDefinition, channel, line int) {
	if !buf.HasChannel(channel) {
		return
	}
	state.batch.Warnf(line, "iChannel%d is bound more than once, the last binding wins", channel)

	textures := buf.TextureInputs[:0]
	for _, in := range buf.TextureInputs {
		if in.Channel != channel {
			textures = append(textures, in)
		}
	}
	buf.TextureInputs = textures

	audio := buf.AudioInputs[:0]
	for _, in := range buf.AudioInputs {
		if in.Channel != channel {
			audio = append(audio, in)
		}
	}
	buf.AudioInputs = audio

	if buf.UsesSelf && buf.SelfChannel == channel {
		buf.UsesSelf = false
		buf.SelfChannel = 0
	}
}

// applySettings applies #iChannelN::Setting directives to the inputs they
// name. Unknown values keep the default.
func (r *resolution) applySettings(state *fileState, buf *shader.BufferDefinition) {
	for _, s := range state.settings {
		line := s.OriginalLine()

		in := buf.TextureInput(s.Index)
		if in == nil {
			state.batch.Warnf(line, "#iChannel%d::%s has no texture on iChannel%d to apply to", s.Index, s.Setting, s.Index)
			continue
		}

		var err error
		switch s.Setting {
		case parser.SettingMagFilter:
			var v shader.MagFilter
			if v, err = shader.ParseMagFilter(s.Value); err == nil {
				in.Mag, in.MagLine = v, line
			}
		case parser.SettingMinFilter:
			var v shader.MinFilter
			if v, err = shader.ParseMinFilter(s.Value); err == nil {
				in.Min, in.MinLine = v, line
			}
		case parser.SettingWrapMode:
			var v shader.WrapMode
			if v, err = shader.ParseWrapMode(s.Value); err == nil {
				in.Wrap, in.WrapLine = v, line
			}
		case parser.SettingType:
			var v shader.TextureType
			if v, err = shader.ParseTextureType(s.Value); err == nil {
				in.Type, in.TypeLine = v, line
			}
		}
		if err != nil {
			state.batch.Warnf(line, "%v", err)
		}
	}
}
