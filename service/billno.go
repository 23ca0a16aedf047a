package service

import (
	"time"

	"dmc-inventory/models"
	"dmc-inventory/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// nextBillNumber reserves the next number for prefix on day. Must run inside
// the transaction that inserts the bill so the sequence row and the bill
// commit together; the unique index on bill_number catches anything else.
func nextBillNumber(tx *gorm.DB, prefix, table string, day time.Time) (string, error) {
	key := utils.BillDay(day)

	var seq models.BillSequence
	if err := tx.Where("prefix = ? AND day = ?", prefix, key).Limit(1).Find(&seq).Error; err != nil {
		return "", err
	}
	var sameDay int64
	if err := tx.Table(table).Where("bill_number LIKE ?", prefix+"-"+key+"-%").Count(&sameDay).Error; err != nil {
		return "", err
	}

	next := max(seq.LastSeq, int(sameDay)) + 1
	number := utils.GenBillNumber(prefix, day, next)
	// skip numbers typed in by hand
	for {
		var taken int64
		if err := tx.Table(table).Where("bill_number = ?", number).Count(&taken).Error; err != nil {
			return "", err
		}
		if taken == 0 {
			break
		}
		next++
		number = utils.GenBillNumber(prefix, day, next)
	}

	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "prefix"}, {Name: "day"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_seq"}),
	}).Create(&models.BillSequence{Prefix: prefix, Day: key, LastSeq: next}).Error
	if err != nil {
		return "", err
	}
	return number, nil
}
