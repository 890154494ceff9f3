package llm_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"google.golang.org/genai"

	"github.com/okian/workforce/internal/adapters/llm"
	"github.com/okian/workforce/internal/domain/summary"
)

type fakeGenerator struct {
	text   string
	err    error
	model  string
	prompt string
	config *genai.GenerateContentConfig
}

func (f *fakeGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.config = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: "model", Parts: []*genai.Part{{Text: f.text}}},
		}},
	}, nil
}

func TestParseReport(t *testing.T) {
	Convey("Given model answers", t, func() {
		Convey("Plain JSON is read as is", func() {
			r := llm.ParseReport(`{"summary":"ok","risks":["a"],"recommendations":["b","c"]}`)
			So(r.Summary, ShouldEqual, "ok")
			So(r.Risks, ShouldResemble, []string{"a"})
			So(r.Recommendations, ShouldResemble, []string{"b", "c"})
		})

		Convey("Markdown fences are stripped", func() {
			r := llm.ParseReport("```json\n{\"summary\":\"fenced\",\"risks\":[],\"recommendations\":[]}\n```")
			So(r.Summary, ShouldEqual, "fenced")
		})

		Convey("A trailing comma is repaired", func() {
			r := llm.ParseReport(`{"summary":"repaired","risks":["x",],"recommendations":[]}`)
			So(r.Summary, ShouldEqual, "repaired")
			So(r.Risks, ShouldResemble, []string{"x"})
		})

		Convey("Missing lists become empty", func() {
			r := llm.ParseReport(`{"summary":"only"}`)
			So(r.Risks, ShouldNotBeNil)
			So(r.Recommendations, ShouldNotBeNil)
		})

		Convey("Empty or summary-less answers give the fallback", func() {
			So(llm.ParseReport(""), ShouldResemble, summary.Fallback())
			So(llm.ParseReport(`{"risks":["a"]}`), ShouldResemble, summary.Fallback())
		})
	})
}

func TestGeminiSummarize(t *testing.T) {
	Convey("Given a Gemini summarizer", t, func() {
		in := summary.Input{TotalHours: 120, ActiveConsultants: 3, TopClient: "Acme"}

		Convey("Without a key or generator construction fails", func() {
			_, err := llm.NewGemini(context.Background(), "")
			So(errors.Is(err, llm.ErrMissingAPIKey), ShouldBeTrue)
		})

		Convey("With a generator the answer is parsed", func() {
			gen := &fakeGenerator{text: `{"summary":"steady","risks":["r"],"recommendations":["k"]}`}
			g, err := llm.NewGemini(context.Background(), "", llm.WithGenerator(gen), llm.WithModel("test-model"))
			So(err, ShouldBeNil)

			r, err := g.Summarize(context.Background(), in)
			So(err, ShouldBeNil)
			So(r.Summary, ShouldEqual, "steady")
			So(gen.model, ShouldEqual, "test-model")
			So(strings.Contains(gen.prompt, `"top_client":"Acme"`), ShouldBeTrue)
			So(gen.config.ResponseMIMEType, ShouldEqual, "application/json")
			So(gen.config.ResponseSchema, ShouldNotBeNil)
		})

		Convey("Transport errors are wrapped", func() {
			gen := &fakeGenerator{err: errors.New("quota")}
			g, _ := llm.NewGemini(context.Background(), "", llm.WithGenerator(gen))
			_, err := g.Summarize(context.Background(), in)
			So(errors.Is(err, llm.ErrGenerate), ShouldBeTrue)
		})
	})
}
