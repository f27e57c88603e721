package bot

import (
	"fmt"

	"vitameter/internal/dates"
)

// Main menu button labels. Incoming text equal to one of these is a
// top-level command and interrupts any pending input mode.
const (
	btnSetDate     = "📅 Установить дату"
	btnLifeStats   = "📊 Статистика жизни"
	btnCalcTo      = "🗓 Рассчитать ДО"
	btnCalcAfter   = "⏳ Рассчитать ПОСЛЕ"
	btnCalcBetween = "🔀 Рассчитать МЕЖДУ"
	btnReminder    = "⏰ Настройка уведомлений"
	btnDeleteDate  = "❌ Удалить дату"
	btnHelp        = "ℹ️ Помощь"
	btnGitHub      = "🧑‍💻 GitHub"
	btnWelcome     = "👋 Добро пожаловать!"
)

const (
	msgWelcome = "👋 Добро пожаловать в Vitameter — Статистика жизни! Выберите действие:"

	msgAskBirthDate   = "Введите дату рождения в формате ДД.ММ.ГГГГ"
	msgBirthDateSaved = "Дата рождения установлена!"
	msgInvalidDate    = "Некорректный формат даты. Попробуйте снова."

	msgNoBirthDate = "Сначала установите дату рождения через 📅 Установить дату."

	msgAskTargetDate = "Введите целевую дату в формате ДД.ММ.ГГГГ"
	msgAskPastDate   = "Введите прошедшую дату в формате ДД.ММ.ГГГГ"
	msgMustBePast    = "Некорректная дата. Убедитесь, что дата в прошлом."

	msgAskRange     = "Введите две даты через дефис (ДД.ММ.ГГГГ-ДД.ММ.ГГГГ)"
	msgInvalidRange = "Некорректный ввод. Формат: ДД.ММ.ГГГГ-ДД.ММ.ГГГГ"

	msgAskReminder     = "Введите день недели и время в формате: понедельник 09:00 (по МСК)"
	msgInvalidReminder = "Неверный формат. Попробуйте: вторник 18:30"

	msgDateDeleted = "Дата рождения удалена."

	msgHelp = "Vitameter — бот, который отображает статистику жизни.\n" +
		"Выберите кнопку и следуйте инструкциям.\n" +
		"Чтобы отобразить список возможностей, отправь /help в чат"

	msgGitHub = "Проект на GitHub: https://github.com/vitameter/vitameter-bot"

	msgFallback = "Выберите действие через меню."

	msgInternalError = "Произошла ошибка. Попробуйте позже."

	lifeStatsCaption    = "Ваша жизненная статистика:"
	weeklyReportCaption = "Ваш еженедельный отчёт (по МСК):"
)

// formatLifeStats renders the elapsed-since-birth breakdown with cumulative
// totals per unit.
func formatLifeStats(bd dates.Breakdown) string {
	return fmt.Sprintf(
		"Вы живёте:\n%d лет, %d месяцев, %d дней\nНедели: %d\nДни: %d\nЧасы: %d\nМинуты: %d\nСекунды: %d",
		bd.Years, bd.Months, bd.Days,
		bd.TotalWeeks, bd.TotalDays, bd.TotalHours, bd.TotalMinutes, bd.TotalSeconds,
	)
}

// formatSpan renders a span as whole weeks plus remainders per unit,
// so 366 days reads as 52 weeks and 2 days.
func formatSpan(bd dates.Breakdown) string {
	days := bd.TotalDays - bd.TotalWeeks*7
	hours := bd.TotalHours - bd.TotalDays*24
	minutes := bd.TotalMinutes - bd.TotalHours*60
	seconds := bd.TotalSeconds - bd.TotalMinutes*60

	return fmt.Sprintf(
		"Недели: %d\nДни: %d\nЧасы: %d\nМинуты: %d\nСекунды: %d",
		bd.TotalWeeks, days, hours, minutes, seconds,
	)
}

func formatReminderConfirmation(next string) string {
	const base = "Напоминание установлено (по МСК). Еженедельно в выбранное время вы будете получать отчёт."
	if next == "" {
		return base
	}
	return base + "\nБлижайший отчёт: " + next
}
