package agent

import (
	"context"
	"fmt"

	"github.com/etnz/reserve/date"
	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-pro"

// Portfolio gives the analyst read access to the tracked portfolio, as markdown.
type Portfolio interface {
	Summary() string
	Transactions() string
	Prices(period date.Period) string
}

func newFacilitator(model string, experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: genai.NewContentFromText(`
			As a facilitator you are in charge of the conversation and of answering the user's request.

			The user tracks a single crypto asset position: the purchases and sales they made,
			the average cost of their position and its profit or loss at the current price.

			Learn about the expert's skill that you can get from the Tools to ask them questions.
			They keep context of your previous questions.
			Devise a plan of questions to ask to each expert and come up with a short answer in markdown.
			Never give financial advice as a certainty.
		`, genai.RoleUser),
		},
		Library: NewLibrary(experts),
	}
}

// NewMarketWatcher returns an expert grounded with Google Search for news.
func NewMarketWatcher(model string) *Expert {
	return &Expert{
		Name: "MarketWatcher",
		Description: `This expert follows the crypto markets and the latest news.
		Ask the MarketWatcher whenever you need recent or grounding information.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: genai.NewContentFromText(`
			You are an expert of the crypto markets. You leverage Google Search to
			ground your assertions, and relate the latest news to the user's request.
			`, genai.RoleUser),
		},
	}
}

// NewAnalyst returns the expert reading the user's portfolio through p.
func NewAnalyst(model string, p Portfolio) *Expert {
	lib := PortfolioFunctions(p)
	return &Expert{
		Name: "Analyst",
		Description: `This is the Analyst. It reads the user's portfolio: holdings,
		invested amount, profit or loss, transactions and the price history.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: genai.NewContentFromText(`
			You are the analyst of the user's portfolio.
			Use the available tools to get the summary, the transactions and the price history.
			Pardon approximative questions and figure out what they meant.
			`, genai.RoleUser),
		},
		Library: NewLibrary(lib),
	}
}

// PortfolioFunctions returns the tools giving access to p.
func PortfolioFunctions(p Portfolio) []Function {
	markdown := &genai.Schema{Type: genai.TypeString, Description: "A markdown document."}
	return []Function{
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "Summary",
				Description: "Summary returns the total holdings, current value, total invested, profit or loss and return of the portfolio.",
				Response:    markdown,
			},
			Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
				return outputResponse(id, "Summary", p.Summary())
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "Transactions",
				Description: "Transactions lists every buy and sell with its amount, price, total value and date, followed by the average cost.",
				Response:    markdown,
			},
			Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
				return outputResponse(id, "Transactions", p.Transactions())
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "Prices",
				Description: "Prices returns the price history, one price per day or per week, with the number of buys on each date.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"period": {
							Type:        genai.TypeString,
							Description: "Either 'daily' (default) or 'weekly'.",
							Enum:        []string{"daily", "weekly"},
						},
					},
				},
				Response: markdown,
			},
			Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
				var s string
				if v, ok := args["period"]; ok {
					if s, ok = v.(string); !ok {
						return errorResponse(id, "Prices", fmt.Errorf("argument 'period' is not a string but %T", v))
					}
				}
				period, err := date.ParsePeriod(s)
				if err != nil {
					return errorResponse(id, "Prices", err)
				}
				return outputResponse(id, "Prices", p.Prices(period))
			},
		},
	}
}
