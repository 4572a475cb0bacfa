package i18n

// Key identifies a user-facing message.
type Key string

const (
	Welcome             Key = "welcome"
	ChooseLanguage      Key = "choose_language"
	LanguageSet         Key = "language_set"
	LanguageUnsupported Key = "language_unsupported"
	ChooseService       Key = "choose_service"
	NoServices          Key = "no_services"
	PickDate            Key = "pick_date"
	OpenCalendar        Key = "open_calendar"
	GroupRedirect       Key = "group_redirect"
	OpenPrivateChat     Key = "open_private_chat"
	NoSlots             Key = "no_slots"
	ChooseSlot          Key = "choose_slot"
	ConfirmPrompt       Key = "confirm_prompt"
	ConfirmButton       Key = "confirm_button"
	CancelButton        Key = "cancel_button"
	Booked              Key = "booked"
	SlotTaken           Key = "slot_taken"
	SlotNotFound        Key = "slot_not_found"
	SelectionDropped    Key = "selection_dropped"
	AppointmentCanceled Key = "appointment_cancelled"
	CancelNotFound      Key = "cancel_not_found"
	MyEmpty             Key = "my_empty"
	MyHeader            Key = "my_header"
	MyItem              Key = "my_item"
	StatusConfirmed     Key = "status_confirmed"
	StatusCancelled     Key = "status_cancelled"
	MissingDate         Key = "missing_date"
	MissingServiceID    Key = "missing_service_id"
	InvalidPayload      Key = "invalid_payload"
	UnknownService      Key = "unknown_service"
	SessionExpired      Key = "session_expired"
	GenericError        Key = "generic_error"
	OperatorNewBooking  Key = "operator_new_booking"
	OperatorSubject     Key = "operator_subject"
	PickerTitle         Key = "picker_title"
	PickerSubmit        Key = "picker_submit"
	PickerDone          Key = "picker_done"
)

var catalog = map[Locale]map[Key]string{
	English: {
		Welcome:             "👋 Hi! I can book an appointment for you.\n\n/book — book a slot\n/my — my appointments\n/lang — change language",
		ChooseLanguage:      "🌐 Choose your language:",
		LanguageSet:         "✅ Language set to English.",
		LanguageUnsupported: "⚠️ Language %q is not supported. Keeping English.",
		ChooseService:       "💈 Choose a service:",
		NoServices:          "No services are available right now.",
		PickDate:            "📅 %s\n\nPick a date in the calendar:",
		OpenCalendar:        "📅 Open calendar",
		GroupRedirect:       "📅 Booking continues in a private chat with me. Tap the button to pick a date for %s.",
		OpenPrivateChat:     "➡️ Continue in private chat",
		NoSlots:             "😔 No free slots for %s on %s. Pick another date.",
		ChooseSlot:          "🕒 %s, %s\n\nChoose a time:",
		ConfirmPrompt:       "Confirm booking?\n\n%s\n%s",
		ConfirmButton:       "✅ Confirm",
		CancelButton:        "✖️ Cancel",
		Booked:              "✅ Booked!\n\n%s\n%s\nAppointment #%d",
		SlotTaken:           "⚠️ Sorry, that slot was just taken. Choose another one.",
		SlotNotFound:        "⚠️ That slot is no longer available. Choose another one.",
		SelectionDropped:    "Booking cancelled. Use /book to start again.",
		AppointmentCanceled: "🗑 Appointment #%d (%s, %s) cancelled.",
		CancelNotFound:      "⚠️ Appointment not found.",
		MyEmpty:             "You have no appointments yet. Use /book to make one.",
		MyHeader:            "📋 Your appointments:",
		MyItem:              "#%d %s — %s (%s)",
		StatusConfirmed:     "confirmed",
		StatusCancelled:     "cancelled",
		MissingDate:         "⚠️ The calendar did not send a date. Please pick a date again.",
		MissingServiceID:    "⚠️ The calendar did not send a valid service. Please start again with /book.",
		InvalidPayload:      "⚠️ The calendar sent something I could not read. Please try again.",
		UnknownService:      "⚠️ This service is not available. Use /book to choose another.",
		SessionExpired:      "⌛ This menu has expired. Use /book to start again.",
		GenericError:        "⚠️ Something went wrong. Please try again.",
		OperatorNewBooking:  "🆕 New booking #%d\n%s\n%s\nchat %d",
		OperatorSubject:     "New booking #%d: %s",
		PickerTitle:         "Pick a date",
		PickerSubmit:        "Show free times",
		PickerDone:          "Done! Go back to the chat to choose a time.",
	},
	Russian: {
		Welcome:             "👋 Привет! Я помогу записаться на приём.\n\n/book — записаться\n/my — мои записи\n/lang — сменить язык",
		ChooseLanguage:      "🌐 Выбери язык:",
		LanguageSet:         "✅ Язык: русский.",
		LanguageUnsupported: "⚠️ Язык %q не поддерживается. Оставляю русский.",
		ChooseService:       "💈 Выбери услугу:",
		NoServices:          "Сейчас нет доступных услуг.",
		PickDate:            "📅 %s\n\nВыбери дату в календаре:",
		OpenCalendar:        "📅 Открыть календарь",
		GroupRedirect:       "📅 Запись продолжится в личном чате. Нажми кнопку, чтобы выбрать дату для %s.",
		OpenPrivateChat:     "➡️ Продолжить в личном чате",
		NoSlots:             "😔 Нет свободных слотов для %s на %s. Выбери другую дату.",
		ChooseSlot:          "🕒 %s, %s\n\nВыбери время:",
		ConfirmPrompt:       "Подтвердить запись?\n\n%s\n%s",
		ConfirmButton:       "✅ Подтвердить",
		CancelButton:        "✖️ Отмена",
		Booked:              "✅ Записано!\n\n%s\n%s\nЗапись #%d",
		SlotTaken:           "⚠️ Этот слот только что заняли. Выбери другой.",
		SlotNotFound:        "⚠️ Этот слот больше недоступен. Выбери другой.",
		SelectionDropped:    "Запись отменена. Используй /book, чтобы начать заново.",
		AppointmentCanceled: "🗑 Запись #%d (%s, %s) отменена.",
		CancelNotFound:      "⚠️ Запись не найдена.",
		MyEmpty:             "У тебя пока нет записей. Используй /book.",
		MyHeader:            "📋 Твои записи:",
		MyItem:              "#%d %s — %s (%s)",
		StatusConfirmed:     "подтверждена",
		StatusCancelled:     "отменена",
		MissingDate:         "⚠️ Календарь не передал дату. Выбери дату ещё раз.",
		MissingServiceID:    "⚠️ Календарь не передал услугу. Начни заново с /book.",
		InvalidPayload:      "⚠️ Не удалось прочитать ответ календаря. Попробуй ещё раз.",
		UnknownService:      "⚠️ Эта услуга недоступна. Выбери другую через /book.",
		SessionExpired:      "⌛ Меню устарело. Используй /book, чтобы начать заново.",
		GenericError:        "⚠️ Что-то пошло не так. Попробуй ещё раз.",
		OperatorNewBooking:  "🆕 Новая запись #%d\n%s\n%s\nчат %d",
		OperatorSubject:     "Новая запись #%d: %s",
		PickerTitle:         "Выбери дату",
		PickerSubmit:        "Показать свободное время",
		PickerDone:          "Готово! Вернись в чат, чтобы выбрать время.",
	},
	Hebrew: {
		Welcome:             "👋 שלום! אני אעזור לך לקבוע תור.\n\n/book — קביעת תור\n/my — התורים שלי\n/lang — שינוי שפה",
		ChooseLanguage:      "🌐 בחר/י שפה:",
		LanguageSet:         "✅ השפה הוגדרה לעברית.",
		LanguageUnsupported: "⚠️ השפה %q אינה נתמכת. נשארים בעברית.",
		ChooseService:       "💈 בחר/י שירות:",
		NoServices:          "אין שירותים זמינים כרגע.",
		PickDate:            "📅 %s\n\nבחר/י תאריך בלוח השנה:",
		OpenCalendar:        "📅 פתיחת לוח שנה",
		GroupRedirect:       "📅 קביעת התור ממשיכה בצ'אט פרטי. לחצ/י על הכפתור כדי לבחור תאריך עבור %s.",
		OpenPrivateChat:     "➡️ המשך בצ'אט פרטי",
		NoSlots:             "😔 אין תורים פנויים עבור %s בתאריך %s. בחר/י תאריך אחר.",
		ChooseSlot:          "🕒 %s, %s\n\nבחר/י שעה:",
		ConfirmPrompt:       "לאשר את התור?\n\n%s\n%s",
		ConfirmButton:       "✅ אישור",
		CancelButton:        "✖️ ביטול",
		Booked:              "✅ התור נקבע!\n\n%s\n%s\nתור מס' %d",
		SlotTaken:           "⚠️ מצטערים, התור הזה נתפס הרגע. בחר/י תור אחר.",
		SlotNotFound:        "⚠️ התור הזה כבר לא זמין. בחר/י תור אחר.",
		SelectionDropped:    "קביעת התור בוטלה. אפשר להתחיל מחדש עם /book.",
		AppointmentCanceled: "🗑 תור מס' %d (%s, %s) בוטל.",
		CancelNotFound:      "⚠️ התור לא נמצא.",
		MyEmpty:             "אין לך תורים עדיין. אפשר לקבוע עם /book.",
		MyHeader:            "📋 התורים שלך:",
		MyItem:              "#%d %s — %s (%s)",
		StatusConfirmed:     "מאושר",
		StatusCancelled:     "בוטל",
		MissingDate:         "⚠️ לוח השנה לא שלח תאריך. בחר/י תאריך שוב.",
		MissingServiceID:    "⚠️ לוח השנה לא שלח שירות תקין. התחל/י מחדש עם /book.",
		InvalidPayload:      "⚠️ לא הצלחתי לקרוא את התשובה מלוח השנה. נסה/י שוב.",
		UnknownService:      "⚠️ השירות אינו זמין. בחר/י שירות אחר עם /book.",
		SessionExpired:      "⌛ התפריט פג תוקף. התחל/י מחדש עם /book.",
		GenericError:        "⚠️ משהו השתבש. נסה/י שוב.",
		OperatorNewBooking:  "🆕 תור חדש מס' %d\n%s\n%s\nצ'אט %d",
		OperatorSubject:     "תור חדש מס' %d: %s",
		PickerTitle:         "בחירת תאריך",
		PickerSubmit:        "הצגת שעות פנויות",
		PickerDone:          "סיימנו! חזור/י לצ'אט כדי לבחור שעה.",
	},
}
