package meal

import (
	"fmt"
	"strings"
)

const (
	LoadingText = "급식정보를 불러오는 중..."
	NoMealText  = "해당 날짜의 급식정보가 없습니다."
)

// RenderText formats a state as plain text for the CLI and the bot.
func RenderText(s State) string {
	switch st := s.(type) {
	case Loading:
		return LoadingText
	case Error:
		if st.Details == "" {
			return "⚠️ " + st.Message
		}
		return fmt.Sprintf("⚠️ %s\n%s", st.Message, st.Details)
	case MealList:
		var sb strings.Builder
		sb.WriteString(st.Title())
		sb.WriteString("\n\n")
		for _, item := range st.Items {
			sb.WriteString(fmt.Sprintf("• %s\n", item))
		}
		return sb.String()
	case NoMeal:
		return NoMealText
	}
	return ""
}
