// Package conversation implements the intake questionnaire: a fixed-step
// question machine that fills three answer slots and hands the completed
// set to the course search exactly once.
package conversation

// SlotCount is the number of answer slots the intake flow collects.
const SlotCount = 3

// Slot names, in fill order. Answers fill strictly in this order, one per
// user-submitted message.
var SlotNames = [SlotCount]string{"area", "current_level", "desired_skills"}

// Questions are the canned prompts shown before each slot, in slot order.
var Questions = [SlotCount]string{
	"Доброго времени суток! Что вы хотели бы освоить?",
	"Какой у вас текущий уровень подготовки?",
	"Какие навыки вы хотели бы получить в итоге?",
}

// Canned outcome messages. Each terminal state appends exactly one of
// these to the conversation.
const (
	ResultsLeadIn = "Вот курсы, которые я подобрал для вас:"
	NothingFound  = "К сожалению, по вашему запросу ничего не нашлось. Начните новый чат и попробуйте изменить формулировку."
	SearchFailed  = "Что-то пошло не так при поиске курсов. Попробуйте позже."
)
