package models

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&Item{},
		&Division{},
		&Center{},
		&IncomingBill{},
		&IncomingLine{},
		&DonationBill{},
		&DonationLine{},
		&OutgoingBill{},
		&OutgoingLine{},
		&BillSequence{},
		&CarePackageTemplate{},
		&CarePackageTemplateItem{},
		&CarePackageIssue{},
		&CarePackageIssueLine{},
	}
}
