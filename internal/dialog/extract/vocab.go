package extract

import (
	"regexp"

	"sochi_assistant_backend/internal/dialog/domain"
)

// Keyword tables are ordered slices, not maps: overlapping keywords must
// resolve deterministically, first match wins.

var goalKeywords = []struct {
	keyword string
	goal    domain.PurchaseGoal
}{
	{"краткосрочные инвестиции", domain.GoalShortInvestment},
	{"короткие инвестиции", domain.GoalShortInvestment},
	{"на год", domain.GoalShortInvestment},
	{"долгосрочные инвестиции", domain.GoalLongInvestment},
	{"длинные инвестиции", domain.GoalLongInvestment},
	{"на долго", domain.GoalLongInvestment},
	{"для проживания", domain.GoalResidence},
	{"для жизни", domain.GoalResidence},
	{"пмж", domain.GoalResidence},
	{"переезд", domain.GoalResidence},
	{"сбережения", domain.GoalSavings},
	{"сохранить капитал", domain.GoalSavings},
	{"сохранение", domain.GoalSavings},
	{"арендный бизнес", domain.GoalRentalBusiness},
	{"сдавать в аренду", domain.GoalRentalBusiness},
	{"аренда", domain.GoalRentalBusiness},
}

var paymentKeywords = []struct {
	keyword string
	method  domain.PaymentMethod
}{
	{"наличные", domain.PaymentCash},
	{"наличными", domain.PaymentCash},
	{"карта", domain.PaymentCards},
	{"карты", domain.PaymentCards},
	{"картой", domain.PaymentCards},
	{"безнал", domain.PaymentBankTransfer},
	{"безналичный", domain.PaymentBankTransfer},
	{"банк", domain.PaymentBankTransfer},
	{"перевод", domain.PaymentBankTransfer},
	{"ипотека", domain.PaymentBankTransfer},
	{"ипотеку", domain.PaymentBankTransfer},
	{"ипотечный", domain.PaymentBankTransfer},
	{"рассрочка", domain.PaymentBankTransfer},
	{"рассрочку", domain.PaymentBankTransfer},
	{"кредит", domain.PaymentBankTransfer},
	{"крипта", domain.PaymentCrypto},
	{"криптовалюта", domain.PaymentCrypto},
	{"биткоин", domain.PaymentCrypto},
}

var propertyTypeKeywords = []struct {
	keyword  string
	propType domain.PropertyType
}{
	{"дом", domain.PropertyHouse},
	{"дома", domain.PropertyHouse},
	{"коттедж", domain.PropertyHouse},
	{"таунхаус", domain.PropertyHouse},
	{"квартира", domain.PropertyApartment},
	{"квартиру", domain.PropertyApartment},
	{"студия", domain.PropertyApartment},
	{"апартаменты", domain.PropertyAparthotel},
	{"апарт", domain.PropertyAparthotel},
	{"участок", domain.PropertyLandPlot},
	{"земля", domain.PropertyLandPlot},
	{"земельный", domain.PropertyLandPlot},
}

var urgencyKeywords = []struct {
	keyword string
	level   domain.UrgencyLevel
}{
	{"срочно", domain.UrgencyHigh},
	{"быстро", domain.UrgencyHigh},
	{"асап", domain.UrgencyHigh},
	{"завтра", domain.UrgencyHigh},
	{"сегодня", domain.UrgencyHigh},
	{"на неделе", domain.UrgencyMedium},
	{"в течение месяца", domain.UrgencyMedium},
	{"не спешу", domain.UrgencyLow},
	{"подумаю", domain.UrgencyLow},
}

var decisionMakerKeywords = []struct {
	keyword string
	maker   domain.DecisionMaker
}{
	{"сам решаю", domain.DecisionSelf},
	{"сама решаю", domain.DecisionSelf},
	{"решаю сам", domain.DecisionSelf},
	{"решаю сама", domain.DecisionSelf},
	{"с супругой", domain.DecisionSpouse},
	{"с супругом", domain.DecisionSpouse},
	{"с женой", domain.DecisionSpouse},
	{"с мужем", domain.DecisionSpouse},
	{"с партнером", domain.DecisionPartner},
	{"с партнёром", domain.DecisionPartner},
	{"с семьей", domain.DecisionFamily},
	{"с семьёй", domain.DecisionFamily},
	{"с родителями", domain.DecisionFamily},
}

// requirementKeywords is cumulative: every unique hit is appended to the
// lead's requirements list. "чат-бот" must come before the bare "бот".
var requirementKeywords = []struct {
	keyword     string
	requirement string
}{
	{"crm", "CRM интеграция"},
	{"сайт", "Интеграция с сайтом"},
	{"instagram", "Instagram"},
	{"whatsapp", "WhatsApp"},
	{"telegram", "Telegram"},
	{"email", "Email рассылки"},
	{"чат-бот", "Чат-бот"},
	{"бот", "Чат-бот"},
	{"автоответчик", "Автоответчик"},
	{"воронка", "Воронка продаж"},
}

var viewKeywords = []struct {
	keyword string
	view    string
}{
	{"вид на море", "море"},
	{"видом на море", "море"},
	{"вид на горы", "горы"},
	{"видом на горы", "горы"},
	{"вид на парк", "парк"},
	{"видом на парк", "парк"},
}

var experienceKeywords = []struct {
	keyword    string
	experience string
}{
	{"первый раз", "первый раз"},
	{"впервые", "первый раз"},
	{"уже покупал", "есть опыт"},
	{"покупал в сочи", "есть опыт"},
	{"покупала в сочи", "есть опыт"},
	{"есть опыт", "есть опыт"},
}

// mortgageBanks lists bank name stems recognized in free text.
var mortgageBanks = []string{
	"сбер", "втб", "альфа", "тинькофф", "газпром", "россельхоз", "дом.рф", "райффайзен",
}

// Sochi district gazetteer. "Красная Поляна" is multi-word with several
// grammatical case forms and is handled separately before this list;
// the bare tokens "красная" and "поляна" are skipped during the scan.
var sochiLocations = []string{
	"центр", "центральный", "адлер", "адлерский",
	"сириус", "имеретинская", "имеретинский",
	"красная поляна", "красная", "поляна", "роза хутор",
	"эсто-садок", "хоста", "мацеста", "дагомыс",
	"лазаревское", "лоо", "вардане", "головинка",
	"у моря", "морской", "побережье", "пляж",
}

var krasnayaPolyanaForms = []string{
	"красная поляна", "красную поляну", "красной поляне", "красной поляны",
}

const canonicalKrasnayaPolyana = "Красная Поляна"

var atDestinationPhrases = []string{"в сочи", "нахожусь в сочи", "живу в сочи", "я в сочи"}
var localResidentPhrases = []string{"живу в сочи", "местный", "проживаю в сочи"}
var notAtDestinationPhrases = []string{"не в сочи", "из москвы", "из питера", "из казани"}

var quickDecisionPhrases = []string{"готов купить", "готова купить", "готов к сделке", "готова к сделке", "хоть завтра"}
var onlineViewingPhrases = []string{"онлайн-показ", "онлайн показ", "видеозвонок", "по видеосвязи", "по видео"}
var remoteDealPhrases = []string{"удаленная сделка", "удалённая сделка", "удаленно", "удалённо", "дистанционно", "не приезжая"}
var needToSellPhrases = []string{"продать свою", "продажа своей", "нужно продать", "сначала продать"}
var mortgageApprovedPhrases = []string{"оформлена", "одобрена", "есть одобрение"}
var presentationPhrases = []string{"презентацию", "презентация", "полная презентация"}

var (
	phoneRe = regexp.MustCompile(`\+?[78][\s\-]?\(?(\d{3})\)?\s?[\s\-]?(\d{3})[\s\-]?(\d{2})[\s\-]?(\d{2})`)
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	cityRe  = regexp.MustCompile(`из\s+([А-Яа-яЁё]+)`)

	roomsRe     = regexp.MustCompile(`(\d+)[\s\-]*комн`)
	areaRangeRe = regexp.MustCompile(`от\s+(\d+)\s+до\s+(\d+)\s*(?:кв\.?\s*м|м2|м²|метров)`)
	areaRe      = regexp.MustCompile(`(\d+)\s*(?:кв\.?\s*м|м2|м²)`)
)

// budgetPatterns is an ordered list; the first pattern that matches wins
// for the whole message. Single-capture patterns yield one bound, dual-capture
// patterns yield a range.
var budgetPatterns = []*regexp.Regexp{
	regexp.MustCompile(`до\s+(\d+)\s*(?:млн|миллион)`),
	regexp.MustCompile(`до\s+(\d+)\s*(?:тыс|тысяч|k)`),
	regexp.MustCompile(`до\s+(\d+)`),
	regexp.MustCompile(`(\d+)\s*(?:тысяч|тыс|k)`),
	regexp.MustCompile(`(\d+)\s*(?:миллион|млн|m)`),
	regexp.MustCompile(`(\d+)\s*(?:долларов?|\$|usd)`),
	regexp.MustCompile(`(\d+)\s*(?:рублей?|руб|₽)`),
	regexp.MustCompile(`от\s+(\d+)\s+до\s+(\d+)`),
	regexp.MustCompile(`(\d+)\s*-\s*(\d+)`),
}
