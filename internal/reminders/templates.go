package reminders

import (
	"hash/fnv"
	"strings"
	"time"
)

// Template names for the follow-up sequence and special situations.
const (
	TemplateFollowUp1h  = "follow_up_1h"
	TemplateFollowUp6h  = "follow_up_6h"
	TemplateFollowUp12h = "follow_up_12h"
	TemplateFollowUp72h = "follow_up_72h"
	TemplateHotLead     = "hot_lead_urgent"
	TemplateViewing     = "viewing_reminder"
)

// messageTemplates holds the nudge variants per template. "{name}" is
// replaced with the customer's name when known; variants containing the
// placeholder are skipped for anonymous leads.
var messageTemplates = map[string][]string{
	TemplateFollowUp1h: {
		"{name}, актуально? Могу прислать 2–3 лучших объекта под ваш запрос.",
		"Есть время посмотреть варианты недвижимости в Сочи?",
		"{name}, подготовила несколько объектов. Актуально сейчас?",
	},
	TemplateFollowUp6h: {
		"Подошли свободные окна на онлайн-показ: 18:00 сегодня или 11:00 завтра.",
		"{name}, появился объект со скидкой в вашей вилке. Предложить?",
		"Есть интересный объект у моря в вашем бюджете. Посмотрим?",
	},
	TemplateFollowUp12h: {
		"Появился проект ниже рынка в вашем бюджете. Предложить?",
		"{name}, если не актуально — напишите, чтобы не отвлекать. Я на связи, когда потребуется.",
		"Завтра последний день скидки на объекты у моря. Интересно?",
	},
	TemplateFollowUp72h: {
		"Если не актуально — напишите, чтобы не отвлекать. Я на связи, когда потребуется.",
		"{name}, завершаю работу с вашим запросом. Если понадобится помощь — всегда рада!",
		"Если ситуация изменится и понадобится недвижимость — обращайтесь!",
	},
	TemplateViewing: {
		"{name}, напоминаю о показе сегодня в {time}. Подтверждаете участие?",
		"Скоро показ! Всё готово, ждём вас в {time}.",
		"{name}, сегодня в {time} показ объекта. Всё в силе?",
	},
	TemplateHotLead: {
		"Есть срочная продажа ниже рынка — только до вечера. Интересно?",
		"Последний слот на сегодня: 19:00. Бронировать?",
		"Специальное предложение именно для вашей сферы. 5 минут на звонок?",
	},
}

// RenderMessage picks a variant deterministically per session and fills
// in the customer's name. Falls back to a nameless variant when the
// name is unknown.
func RenderMessage(template, sessionKey, name string) string {
	variants, ok := messageTemplates[template]
	if !ok || len(variants) == 0 {
		return ""
	}

	candidates := variants
	if name == "" {
		nameless := make([]string, 0, len(variants))
		for _, v := range variants {
			if !strings.Contains(v, "{name}") {
				nameless = append(nameless, v)
			}
		}
		if len(nameless) > 0 {
			candidates = nameless
		}
	}

	h := fnv.New32a()
	h.Write([]byte(sessionKey))
	h.Write([]byte(template))
	msg := candidates[int(h.Sum32())%len(candidates)]

	if name != "" {
		return strings.ReplaceAll(msg, "{name}", name)
	}
	return strings.ReplaceAll(msg, "{name}, ", "")
}

// RenderViewingMessage renders the viewing reminder with the agreed
// slot time filled in.
func RenderViewingMessage(sessionKey, name string, slot time.Time) string {
	msg := RenderMessage(TemplateViewing, sessionKey, name)
	return strings.ReplaceAll(msg, "{time}", slot.Format("15:04"))
}
