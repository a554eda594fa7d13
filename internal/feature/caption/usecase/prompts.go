package usecase

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const noHeadlines = "No major headlines."

func captionPrompt(symbol, price string) string {
	return fmt.Sprintf(`You are a creative social media manager writing captions for a finance page that provides stock updates.
Write a short, authentic caption about the stock %[1]s, with its latest price at $%[2]s.

Requirements:
- Keep it under 30 words (like a real Telegram/Twitter caption).
- Always start with an attention hook (emoji + phrase).
- Mention %[1]s and its price clearly.
- Add a couple of emojis (finance, trend, or emotional tone).
- Sound casual, conversational, and energetic, not like a news report.
- Optionally end with a quick question or call-to-action (e.g., "Bullish or bearish?").
- Avoid being too formal or generic.

Examples (for inspiration, don't copy literally):
- "🚀 %[1]s is on the move! Trading at $%[2]s right now. Where's it heading next? 📊🔥"
- "📉 Market shake-up: %[1]s slips to $%[2]s. Buying the dip or staying cautious? 🤔💵"
`, symbol, price)
}

func summaryPrompt(symbol, price string, percentChange float64, headlines []string) string {
	news := noHeadlines
	if len(headlines) > 0 {
		news = strings.Join(headlines, "\n")
	}
	return fmt.Sprintf(`You are a human financial content creator writing a Telegram-style post.
Stock: %[1]s
Current price: $%[2]s (%+.2[3]f%% today)
Latest news headlines:
%[4]s

Write a short, engaging, and human-sounding summary (2-3 short paragraphs) about %[1]s for Telegram:
- Mention the price clearly
- Include the context from news headlines
- Use casual and relatable language
- Add relevant emojis (📊📈📉💡💵)
- End with a question or call-to-action
`, symbol, price, percentChange, news)
}

func formatPrice(price decimal.Decimal) string {
	return price.StringFixed(2)
}
