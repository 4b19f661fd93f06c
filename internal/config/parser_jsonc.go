package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

type jsoncConfig struct {
	Store     *jsoncStore     `json:"store"`
	Archive   *jsoncArchive   `json:"archive"`
	STT       *jsoncSTT       `json:"stt"`
	Embedding *jsoncEmbedding `json:"embedding"`
	Speaker   *jsoncSpeaker   `json:"speaker"`
	VAD       *jsoncVAD       `json:"vad"`
	Segmenter *jsoncSegmenter `json:"segmenter"`
	Pipeline  *jsoncPipeline  `json:"pipeline"`
	Server    *jsoncServer    `json:"server"`
	Audio     *jsoncAudio     `json:"audio"`
	Debug     *jsoncDebug     `json:"debug"`
}

type jsoncStore struct {
	Path *string `json:"path"`
}

type jsoncArchive struct {
	Backend    *string `json:"backend"`
	LocalRoot  *string `json:"local_root"`
	S3Bucket   *string `json:"s3_bucket"`
	S3Prefix   *string `json:"s3_prefix"`
	S3Region   *string `json:"s3_region"`
	S3Endpoint *string `json:"s3_endpoint"`
}

type jsoncSTT struct {
	URL       *string `json:"url"`
	Language  *string `json:"language"`
	TimeoutMS *int    `json:"timeout_ms"`
}

type jsoncEmbedding struct {
	Strategy   *string `json:"strategy"`
	URL        *string `json:"url"`
	Dimensions *int    `json:"dimensions"`
	TimeoutMS  *int    `json:"timeout_ms"`
}

type jsoncSpeaker struct {
	Threshold     *float64 `json:"threshold"`
	RefreshWeight *float64 `json:"refresh_weight"`
}

type jsoncVAD struct {
	Aggressiveness *int `json:"aggressiveness"`
}

type jsoncSegmenter struct {
	PaddingMS     *int    `json:"padding_ms"`
	MergeGapMS    *int    `json:"merge_gap_ms"`
	MinDurationMS *int    `json:"min_duration_ms"`
	MaxDurationMS *int    `json:"max_duration_ms"`
	LongSpans     *string `json:"long_spans"`
}

type jsoncPipeline struct {
	Workers    *int `json:"workers"`
	QueueDepth *int `json:"queue_depth"`
}

type jsoncServer struct {
	Addr *string `json:"addr"`
}

type jsoncAudio struct {
	Input    *string `json:"input"`
	Fallback *string `json:"fallback"`
}

type jsoncDebug struct {
	DumpAudio *bool `json:"dump_audio"`
}

func parseJSONC(content string, base Config) (Config, []Warning, error) {
	normalized, err := normalizeJSONC(content)
	if err != nil {
		return Config{}, nil, err
	}

	decoder := json.NewDecoder(strings.NewReader(normalized))
	decoder.DisallowUnknownFields()

	var payload jsoncConfig
	if err := decoder.Decode(&payload); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}
	if err := ensureSingleJSONValue(decoder); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}

	cfg := base
	payload.applyTo(&cfg)

	warnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, warnings, nil
}

func (payload jsoncConfig) applyTo(cfg *Config) {
	if payload.Store != nil && payload.Store.Path != nil {
		cfg.Store.Path = strings.TrimSpace(*payload.Store.Path)
	}

	if payload.Archive != nil {
		if payload.Archive.Backend != nil {
			cfg.Archive.Backend = strings.ToLower(strings.TrimSpace(*payload.Archive.Backend))
		}
		if payload.Archive.LocalRoot != nil {
			cfg.Archive.LocalRoot = strings.TrimSpace(*payload.Archive.LocalRoot)
		}
		if payload.Archive.S3Bucket != nil {
			cfg.Archive.S3Bucket = strings.TrimSpace(*payload.Archive.S3Bucket)
		}
		if payload.Archive.S3Prefix != nil {
			cfg.Archive.S3Prefix = strings.Trim(strings.TrimSpace(*payload.Archive.S3Prefix), "/")
		}
		if payload.Archive.S3Region != nil {
			cfg.Archive.S3Region = strings.TrimSpace(*payload.Archive.S3Region)
		}
		if payload.Archive.S3Endpoint != nil {
			cfg.Archive.S3Endpoint = strings.TrimSpace(*payload.Archive.S3Endpoint)
		}
	}

	if payload.STT != nil {
		if payload.STT.URL != nil {
			cfg.STT.URL = strings.TrimSpace(*payload.STT.URL)
		}
		if payload.STT.Language != nil {
			cfg.STT.Language = strings.TrimSpace(*payload.STT.Language)
		}
		if payload.STT.TimeoutMS != nil {
			cfg.STT.TimeoutMS = *payload.STT.TimeoutMS
		}
	}

	if payload.Embedding != nil {
		if payload.Embedding.Strategy != nil {
			cfg.Embedding.Strategy = strings.ToLower(strings.TrimSpace(*payload.Embedding.Strategy))
		}
		if payload.Embedding.URL != nil {
			cfg.Embedding.URL = strings.TrimSpace(*payload.Embedding.URL)
		}
		if payload.Embedding.Dimensions != nil {
			cfg.Embedding.Dimensions = *payload.Embedding.Dimensions
		}
		if payload.Embedding.TimeoutMS != nil {
			cfg.Embedding.TimeoutMS = *payload.Embedding.TimeoutMS
		}
	}

	if payload.Speaker != nil {
		if payload.Speaker.Threshold != nil {
			cfg.Speaker.Threshold = *payload.Speaker.Threshold
		}
		if payload.Speaker.RefreshWeight != nil {
			cfg.Speaker.RefreshWeight = *payload.Speaker.RefreshWeight
		}
	}

	if payload.VAD != nil && payload.VAD.Aggressiveness != nil {
		cfg.VAD.Aggressiveness = *payload.VAD.Aggressiveness
	}

	if payload.Segmenter != nil {
		if payload.Segmenter.PaddingMS != nil {
			cfg.Segmenter.PaddingMS = *payload.Segmenter.PaddingMS
		}
		if payload.Segmenter.MergeGapMS != nil {
			cfg.Segmenter.MergeGapMS = *payload.Segmenter.MergeGapMS
		}
		if payload.Segmenter.MinDurationMS != nil {
			cfg.Segmenter.MinDurationMS = *payload.Segmenter.MinDurationMS
		}
		if payload.Segmenter.MaxDurationMS != nil {
			cfg.Segmenter.MaxDurationMS = *payload.Segmenter.MaxDurationMS
		}
		if payload.Segmenter.LongSpans != nil {
			cfg.Segmenter.LongSpans = strings.ToLower(strings.TrimSpace(*payload.Segmenter.LongSpans))
		}
	}

	if payload.Pipeline != nil {
		if payload.Pipeline.Workers != nil {
			cfg.Pipeline.Workers = *payload.Pipeline.Workers
		}
		if payload.Pipeline.QueueDepth != nil {
			cfg.Pipeline.QueueDepth = *payload.Pipeline.QueueDepth
		}
	}

	if payload.Server != nil && payload.Server.Addr != nil {
		cfg.Server.Addr = strings.TrimSpace(*payload.Server.Addr)
	}

	if payload.Audio != nil {
		if payload.Audio.Input != nil {
			cfg.Audio.Input = *payload.Audio.Input
		}
		if payload.Audio.Fallback != nil {
			cfg.Audio.Fallback = *payload.Audio.Fallback
		}
	}

	if payload.Debug != nil && payload.Debug.DumpAudio != nil {
		cfg.Debug.DumpAudio = *payload.Debug.DumpAudio
	}
}

func normalizeJSONC(content string) (string, error) {
	withoutComments, err := stripJSONCComments(content)
	if err != nil {
		return "", err
	}
	return stripJSONCTrailingCommas(withoutComments), nil
}

func stripJSONCComments(content string) (string, error) {
	var out strings.Builder
	out.Grow(len(content))

	inString := false
	escape := false
	lineComment := false
	blockComment := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if lineComment {
			if ch == '\n' || ch == '\r' {
				lineComment = false
				out.WriteByte(ch)
				continue
			}
			out.WriteByte(' ')
			continue
		}

		if blockComment {
			if ch == '*' && i+1 < len(content) && content[i+1] == '/' {
				blockComment = false
				out.WriteString("  ")
				i++
				continue
			}
			if ch == '\n' || ch == '\r' || ch == '\t' {
				out.WriteByte(ch)
			} else {
				out.WriteByte(' ')
			}
			continue
		}

		if inString {
			out.WriteByte(ch)
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			out.WriteByte(ch)
			continue
		}

		if ch == '/' && i+1 < len(content) {
			next := content[i+1]
			if next == '/' {
				lineComment = true
				out.WriteString("  ")
				i++
				continue
			}
			if next == '*' {
				blockComment = true
				out.WriteString("  ")
				i++
				continue
			}
		}

		out.WriteByte(ch)
	}

	if blockComment {
		return "", fmt.Errorf("unterminated block comment in JSONC")
	}

	return out.String(), nil
}

func stripJSONCTrailingCommas(content string) string {
	var out strings.Builder
	out.Grow(len(content))

	inString := false
	escape := false

	for i := 0; i < len(content); i++ {
		ch := content[i]

		if inString {
			out.WriteByte(ch)
			if escape {
				escape = false
				continue
			}
			if ch == '\\' {
				escape = true
				continue
			}
			if ch == '"' {
				inString = false
			}
			continue
		}

		if ch == '"' {
			inString = true
			out.WriteByte(ch)
			continue
		}

		if ch == ',' {
			j := i + 1
			for j < len(content) && isJSONWhitespace(content[j]) {
				j++
			}
			if j < len(content) && (content[j] == '}' || content[j] == ']') {
				continue
			}
		}

		out.WriteByte(ch)
	}

	return out.String()
}

func isJSONWhitespace(ch byte) bool {
	switch ch {
	case ' ', '\n', '\r', '\t':
		return true
	default:
		return false
	}
}

func ensureSingleJSONValue(decoder *json.Decoder) error {
	var extra struct{}
	err := decoder.Decode(&extra)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err == nil {
		return fmt.Errorf("multiple JSON values are not allowed")
	}
	return err
}

func wrapJSONDecodeError(content string, err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := offsetToLineCol(content, syntaxErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		line, col := offsetToLineCol(content, typeErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	return err
}

func offsetToLineCol(content string, offset int64) (int, int) {
	if offset <= 0 {
		return 1, 1
	}

	limit := int(offset)
	if limit > len(content) {
		limit = len(content)
	}

	line := 1
	col := 1
	for i := 0; i < limit-1; i++ {
		if content[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
