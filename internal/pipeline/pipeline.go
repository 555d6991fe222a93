// Package pipeline implements C7: turning the CodeSegment stream from a
// file into embedded Documents, ready for a vector store's upsert.
package pipeline

import (
	"context"
	"fmt"

	"github.com/Aman-CERP/codevector/internal/embedclient"
	"github.com/Aman-CERP/codevector/internal/model"
	"github.com/Aman-CERP/codevector/internal/tokenizer"
)

// Describer is the optional code2desc collaborator; nil disables it.
type Describer interface {
	Describe(ctx context.Context, code string) (string, error)
}

// FileContext identifies the file a segment stream belongs to.
type FileContext struct {
	RepoID       string
	FileID       string
	RelativePath string
}

// Pipeline is C7, bound to one embedding client and an optional describer.
type Pipeline struct {
	embedder  *embedclient.Embedder
	describer Describer
	// Code2Desc mirrors spec.md §6's vector.code2desc setting.
	Code2Desc bool
}

// New builds a Pipeline. describer may be nil when code2desc is disabled.
func New(embedder *embedclient.Embedder, describer Describer, code2desc bool) *Pipeline {
	return &Pipeline{embedder: embedder, describer: describer, Code2Desc: code2desc}
}

// BuildAndEmbed implements build_and_embedding_segment: it decorates every
// segment with ids/hashes/token counts, optionally describes it, and
// embeds the whole file's segments in one batched call.
func (p *Pipeline) BuildAndEmbed(ctx context.Context, fc FileContext, segments []model.CodeSegment) ([]model.Document, error) {
	if len(segments) == 0 {
		return nil, nil
	}

	docs := make([]model.Document, len(segments))
	for i, s := range segments {
		cl100k, err := tokenizer.Count(s.Code, tokenizer.CL100kBase)
		if err != nil {
			return nil, err
		}
		o200k, err := tokenizer.Count(s.Code, tokenizer.O200kBase)
		if err != nil {
			return nil, err
		}

		docs[i] = model.Document{
			Content: s.Code,
			Meta: model.DocumentMeta{
				RepoID:             fc.RepoID,
				FileID:             fc.FileID,
				SegmentID:          model.SegmentID(),
				RelativePath:       fc.RelativePath,
				StartLine:          s.Start,
				EndLine:            s.End,
				SegmentBlock:       s.Block,
				SegmentHash:        model.ContentHash(s.Code),
				SegmentCl100kToken: cl100k,
				SegmentO200kToken:  o200k,
			},
		}
	}

	if p.Code2Desc && p.describer != nil {
		for i := range docs {
			desc, err := p.describer.Describe(ctx, docs[i].Content)
			if err != nil {
				return nil, err
			}
			docs[i].Meta.Description = desc
		}
	}

	inputs := make([]string, len(docs))
	for i, d := range docs {
		inputs[i] = embeddingInput(d)
	}

	vectors, err := p.embedder.Embed(ctx, inputs)
	if err != nil {
		return nil, err
	}
	for i := range docs {
		docs[i].Vector = vectors[i]
	}
	return docs, nil
}

// embeddingInput builds the string actually sent to the embedding model,
// per spec.md §4.7 step 4.
func embeddingInput(d model.Document) string {
	if d.Meta.Description != "" {
		return fmt.Sprintf("'%s'\n'%s'\n%s", d.Meta.RelativePath, d.Meta.Description, d.Content)
	}
	return fmt.Sprintf("'%s'\n%s", d.Meta.RelativePath, d.Content)
}
