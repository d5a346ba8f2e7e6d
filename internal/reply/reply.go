// Package reply renders the texts the bot sends back to chats.
package reply

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"thanks-bot/internal/ledger"
)

var medals = []string{"🥇 ", "🥈 ", "🥉 "}

const placeholder = "       "

// Leaderboard renders one line per row; the first three get medals.
func Leaderboard(rows []ledger.Standing, coin string) string {
	if len(rows) == 0 {
		return fmt.Sprintf("Пока никто не получил %s.", coin)
	}

	var b strings.Builder
	for i, row := range rows {
		if i < len(medals) {
			b.WriteString(medals[i])
		} else {
			b.WriteString(placeholder)
		}
		fmt.Fprintf(&b, "%d - %s (@%s)\n", row.Total, displayName(row.FirstName, row.LastName), row.Username)
	}
	return b.String()
}

func displayName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

func Awarded(username string, balance int64, coin string) string {
	return fmt.Sprintf("@%s\n%s повышена: %d", username, capitalize(coin), balance)
}

// AwardNotice is sent privately to the recipient.
func AwardNotice(from string, balance int64, coin string) string {
	return fmt.Sprintf("🎉 %s поблагодарил(а) вас! %s: %d", from, capitalize(coin), balance)
}

func QuotaExceeded(username string, limit int) string {
	return fmt.Sprintf("⏳ Лимит на сегодня исчерпан (%d в день), @%s не получит очко.", limit, username)
}

func NotRegistered(username string) string {
	return fmt.Sprintf("❌ @%s не зарегистрирован(а).", username)
}

func SenderNotRegistered(botUsername string) string {
	return fmt.Sprintf("❌ Сначала зарегистрируйтесь: /reg@%s <ключ>", botUsername)
}

func SelfAward() string {
	return "🙃 Нельзя благодарить самого себя."
}

func Excluded(username string) string {
	return fmt.Sprintf("🤖 @%s не участвует в рейтинге.", username)
}

func Registered(outcome ledger.Outcome, name string) string {
	if outcome == ledger.Created {
		return fmt.Sprintf("✅ %s, вы зарегистрированы!", name)
	}
	return fmt.Sprintf("👌 %s, вы уже зарегистрированы. Данные профиля обновлены.", name)
}

func WrongKey() string {
	return "❌ Неверный ключ регистрации."
}

func Start(botName, keyWord, coin string) string {
	if botName == "" {
		botName = "Бот"
	}
	return fmt.Sprintf("Привет! 👋 %s считает %s в группе.\n\n"+
		"1. Зарегистрируйтесь командой /reg <ключ>.\n"+
		"2. Напишите «%s» и упомяните участника через @, чтобы поблагодарить его.\n"+
		"3. /top покажет рейтинг, /me ваш баланс.", botName, coin, keyWord)
}

func GroupsOnly() string {
	return "Этот бот полезен только в группах."
}

// Me renders the caller's balance; remaining < 0 means no daily cap.
func Me(balance int64, remaining int, coin string) string {
	text := fmt.Sprintf("👤 %s: %d", capitalize(coin), balance)
	if remaining >= 0 {
		text += fmt.Sprintf("\nОсталось благодарностей на сегодня: %d", remaining)
	}
	return text
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
