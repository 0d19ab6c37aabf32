// Package i18n holds the user-facing message catalog. English and Chinese
// are the two supported languages; unknown languages fall back to English.
package i18n

import "fmt"

const (
	LangEN = "en"
	LangZH = "zh"
)

// Message keys.
const (
	MsgEscrowCreated       = "escrow_created"
	MsgProviderClaimed     = "provider_claimed"
	MsgWalletSet           = "wallet_set"
	MsgPaymentMarked       = "payment_marked"
	MsgPaymentRejected     = "payment_rejected"
	MsgDepositConfirmed    = "deposit_confirmed"
	MsgDepositInconclusive = "deposit_inconclusive"
	MsgDeliveryConfirmed   = "delivery_confirmed"
	MsgFundsReleased       = "funds_released"
	MsgEscrowCancelled     = "escrow_cancelled"
	MsgPaymentInfo         = "payment_info"
	MsgAskAmount           = "ask_amount"
	MsgAskDescription      = "ask_description"
	MsgAskWallet           = "ask_wallet"
	MsgInvalidAmount       = "invalid_amount"
	MsgInvalidWallet       = "invalid_wallet"
)

var catalog = map[string]map[string]string{
	LangEN: {
		MsgEscrowCreated:       "Escrow opened for %s %s. The seeker should send the deposit and then mark the escrow as paid.",
		MsgProviderClaimed:     "A provider has claimed this escrow.",
		MsgWalletSet:           "The provider's payout wallet has been recorded.",
		MsgPaymentMarked:       "The seeker marked the escrow as paid. An admin will verify the deposit.",
		MsgPaymentRejected:     "The admin could not verify the deposit. The escrow is back to its initial state.",
		MsgDepositConfirmed:    "Deposit confirmed by the admin. Funds are held in escrow.",
		MsgDepositInconclusive: "The admin acknowledged the deposit. The automatic balance check was inconclusive.",
		MsgDeliveryConfirmed:   "The provider confirmed delivery. Waiting for the admin to release the funds.",
		MsgFundsReleased:       "Funds released to the provider. Withdrawal reference: %s.",
		MsgEscrowCancelled:     "This escrow has been cancelled.",
		MsgPaymentInfo:         "Send %s %s to the deposit address:\n%s\nNetwork: %s",
		MsgAskAmount:           "Enter the escrow amount in %s:",
		MsgAskDescription:      "Describe the deal (or send a dash to skip):",
		MsgAskWallet:           "Send your %s payout wallet address:",
		MsgInvalidAmount:       "The amount must be a positive number. Try again:",
		MsgInvalidWallet:       "That does not look like a valid wallet address. Try again:",
	},
	LangZH: {
		MsgEscrowCreated:       "已开启 %s %s 的担保交易。买方请转入押金后将订单标记为已付款。",
		MsgProviderClaimed:     "服务方已接单。",
		MsgWalletSet:           "服务方的收款钱包已登记。",
		MsgPaymentMarked:       "买方已标记付款，管理员将核实到账情况。",
		MsgPaymentRejected:     "管理员未能核实到账，订单已退回初始状态。",
		MsgDepositConfirmed:    "管理员已确认到账，资金已托管。",
		MsgDepositInconclusive: "管理员已确认收到押金，自动余额核对未能给出结论。",
		MsgDeliveryConfirmed:   "服务方已确认交付，等待管理员放行资金。",
		MsgFundsReleased:       "资金已放行给服务方。提现参考号：%s。",
		MsgEscrowCancelled:     "该担保交易已取消。",
		MsgPaymentInfo:         "请将 %s %s 转入押金地址：\n%s\n网络：%s",
		MsgAskAmount:           "请输入担保金额（%s）：",
		MsgAskDescription:      "请描述交易内容（发送 - 可跳过）：",
		MsgAskWallet:           "请发送您的 %s 收款钱包地址：",
		MsgInvalidAmount:       "金额必须为正数，请重新输入：",
		MsgInvalidWallet:       "钱包地址格式不正确，请重新输入：",
	},
}

// T renders a message in the given language, falling back to English when
// the language or key is unknown.
func T(lang, key string, args ...any) string {
	msgs, ok := catalog[lang]
	if !ok {
		msgs = catalog[LangEN]
	}
	tmpl, ok := msgs[key]
	if !ok {
		tmpl, ok = catalog[LangEN][key]
		if !ok {
			return key
		}
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}
