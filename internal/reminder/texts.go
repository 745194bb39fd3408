package reminder

import (
	"fmt"
	"time"
)

// Text commands.
const (
	CmdQuery  = "查詢提醒時間"
	CmdReset  = "修改提醒時間"
	CmdDelay  = "延後提醒"
	CmdCancel = "取消"
)

// DateLayout is the only accepted date input format, and the display format.
const DateLayout = "2006/01/02"

const maxDelayDays = 30

const (
	textWelcome          = "感謝邀請我加入！"
	textHelp             = "目前的有效指令為：\n1. " + CmdReset + "\n2. " + CmdQuery + "\n3. " + CmdDelay
	textChooseMedication = "想要修改或設定的是哪一種藥的時間呢？"
	textAskDate          = "請輸入想要提醒的時間（YYYY/MM/DD）。"
	textDateFormatError  = "時間輸入格式錯誤，請重新輸入提醒時間。"
	textPastDate         = "此為過去時間，請重新輸入提醒時間。"
	textAskDelayCount    = "請輸入要延後的天數（1-30）。"
	textDelayFormatError = "天數輸入格式錯誤，請輸入 1 到 30 之間的數字。"
	textNothingWaiting   = "目前沒有等待確認的提醒。"
	textCancelled        = "已取消。"
	textUnknownAction    = "無法辨識的操作，請重新操作。"
	textInternalError    = "系統發生錯誤，請稍後再試。"
	textNoReminders      = "目前沒有提醒時間，請輸入「" + CmdReset + "」進行設定。"
)

func FormatDate(t time.Time) string { return t.Format(DateLayout) }

func textNextDue(name string, due time.Time) string {
	return fmt.Sprintf("下次餵 %s 的日期為：%s", name, FormatDate(due))
}

func textNextDueCompact(name string, due time.Time) string {
	return fmt.Sprintf("下次餵%s的日期為：%s", name, FormatDate(due))
}

func textNotConfigured(name string) string {
	return fmt.Sprintf("目前沒有設定 %s 的提醒時間，請輸入「%s」", name, CmdReset)
}

func textDateSet(name string, due time.Time) string {
	return fmt.Sprintf("完成設定，下次餵 %s 的日期為：%s。", name, FormatDate(due))
}

func textConfirmPrompt(pet, name string) string {
	return fmt.Sprintf("今天是餵%s%s的日子！請確認是否完成！", pet, name)
}

func textDone(name string, next time.Time) string {
	return fmt.Sprintf("好的，%s的下次提醒時間為 %s", name, FormatDate(next))
}

func textPostponed(name string, next time.Time) string {
	return fmt.Sprintf("%s的下次提醒時間設為隔日 %s 送出提醒", name, FormatDate(next))
}

func textDelayed(name string, next time.Time) string {
	return fmt.Sprintf("%s的下次提醒時間延後為 %s", name, FormatDate(next))
}

func textAlreadyHandled(name string) string {
	return fmt.Sprintf("已經處理過 %s 的提醒了，不需要再操作。", name)
}
