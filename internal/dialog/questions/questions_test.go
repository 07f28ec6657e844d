package questions

import (
	"testing"
	"time"

	"sochi_assistant_backend/internal/dialog/domain"
)

func TestForStageCoversEveryStage(t *testing.T) {
	lead := domain.NewLead(time.Now())

	for _, stage := range domain.Stages() {
		primary := ForStage(stage, lead)
		alternatives := Alternatives(stage, lead)
		if len(primary) == 0 && len(alternatives) == 0 {
			t.Errorf("stage %s has no questions for an empty lead", stage)
		}
	}
}

func TestForStageSkipsAnsweredTopics(t *testing.T) {
	lead := domain.NewLead(time.Now())
	lead.Goal = domain.GoalLongInvestment
	if qs := ForStage(domain.StageLocation, lead); qs != nil {
		t.Errorf("goal already known, expected no goal questions, got %v", qs)
	}

	lead.BudgetMax = 8_000_000
	if qs := ForStage(domain.StageBudget, lead); qs != nil {
		t.Errorf("budget already known, expected no budget questions, got %v", qs)
	}

	lead.Payment = domain.PaymentBankTransfer
	if qs := ForStage(domain.StagePayment, lead); qs != nil {
		t.Errorf("payment already known, expected no payment questions, got %v", qs)
	}
}

func TestActionStageVariesByTier(t *testing.T) {
	cold := domain.NewLead(time.Now())

	hot := domain.NewLead(time.Now())
	hot.Tier = domain.TierHot

	coldQs := ForStage(domain.StageAction, cold)
	hotQs := ForStage(domain.StageAction, hot)
	if len(coldQs) == 0 || len(hotQs) == 0 {
		t.Fatal("action stage must always propose a next step")
	}
	if coldQs[0] == hotQs[0] {
		t.Errorf("hot lead should get a pushier action question, both got %q", coldQs[0])
	}
}
