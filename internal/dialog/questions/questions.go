// Package questions holds the per-stage question catalogs the
// assistant asks next. For every stage there is a primary list and an
// alternative list used once the primary questions have all been asked.
package questions

import "sochi_assistant_backend/internal/dialog/domain"

// ForStage returns the primary questions for the stage, taking into
// account what the lead has already answered.
func ForStage(stage domain.Stage, lead domain.Lead) []string {
	switch stage {
	case domain.StageGreeting:
		return []string{
			"Для себя ищете недвижимость или как инвестицию?",
			"Вы сейчас в Сочи? Если нет — из какого города?",
		}

	case domain.StageLocation:
		if lead.Goal == "" {
			return []string{
				"Для себя ищете жилье или как инвестицию?",
				"Цель покупки: ПМЖ, сдача в аренду или сбережения?",
			}
		}
		return nil

	case domain.StageGoal:
		if !lead.HasBudget() {
			return []string{
				"На какой бюджет мне ориентироваться?",
				"Рассматриваете объекты от 5 млн рублей или другой диапазон?",
			}
		}
		return nil

	case domain.StagePayment:
		if lead.Payment == "" {
			return []string{
				"Как планируете оплачивать: наличные, ипотека или рассрочка?",
				"Нужна ли помощь с одобрением ипотеки?",
			}
		}
		return nil

	case domain.StageRequirements:
		return []string{
			"Какой район Сочи рассматриваете: Центр, Адлер, Сириус или Красная Поляна?",
			"Квартира, апартаменты или дом?",
		}

	case domain.StageBudget:
		if !lead.HasBudget() {
			return []string{
				"Какой бюджет вы закладываете на покупку?",
				"До какой суммы рассматриваете варианты?",
			}
		}
		return nil

	case domain.StageUrgency:
		return []string{
			"Когда планируете покупку: в ближайший месяц или позже?",
			"Вы уже в Сочи или планируете приехать на просмотры?",
		}

	case domain.StageExperience:
		return []string{
			"Вы уже покупали недвижимость в Сочи или это первый опыт?",
			"Смотрели ли уже какие-то объекты?",
		}

	case domain.StageAction:
		if lead.Tier == domain.TierHot {
			return []string{
				"Готовы на показ? Сегодня в 15:30 или 18:00?",
				"Чтобы прислать презентацию, подскажите номер WhatsApp: +7...",
			}
		}
		return []string{
			"Удобно будет созвониться или посмотреть подборку объектов?",
		}
	}

	return nil
}

// Alternatives returns fallback questions for the stage, used when all
// primary questions were already asked in the session.
func Alternatives(stage domain.Stage, lead domain.Lead) []string {
	switch stage {
	case domain.StageGreeting:
		return []string{
			"Расскажите, пожалуйста, подробнее о вашей ситуации",
			"Что вас привело к поиску недвижимости в Сочи?",
		}

	case domain.StageLocation:
		if lead.Goal == "" {
			return []string{
				"Какие у вас планы на недвижимость?",
				"Что для вас важнее: доходность или надежность?",
			}
		}
		return nil

	case domain.StageGoal:
		return []string{
			"Какие сроки покупки вы рассматриваете?",
			"Вы уже определились с форматом недвижимости?",
		}

	case domain.StagePayment:
		return []string{
			"Рассматриваете ли господдержку или семейную ипотеку?",
			"Будет ли первоначальный взнос?",
		}

	case domain.StageRequirements:
		return []string{
			"Есть ли у вас особые пожелания к объекту?",
			"Что для вас важнее: локация или характеристики объекта?",
		}

	case domain.StageBudget:
		return []string{
			"Какой диапазон цен вы рассматриваете?",
			"Есть ли у вас предпочтения по форме оплаты?",
		}

	case domain.StageUrgency:
		return []string{
			"Есть ли дата, к которой хотите закрыть сделку?",
			"Насколько быстро готовы выйти на просмотры?",
		}

	case domain.StageExperience:
		return []string{
			"Знакомы ли вы с рынком новостроек Сочи?",
			"Был ли опыт удаленных сделок?",
		}

	case domain.StageAction:
		return []string{
			"Какой формат удобнее: звонок, показ или презентация?",
		}
	}

	return nil
}
