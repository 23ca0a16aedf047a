package service

import (
	"testing"

	"dmc-inventory/apperr"
	"dmc-inventory/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueSnapshotsRecipe(t *testing.T) {
	f := newFixture(t)
	rice := f.item(t, "Rice", "0")
	hall := f.center(t, "Hall")
	f.receive(t, day(2024, 3, 1), "CWE", map[uint]string{rice: "100"})

	tpl := f.template(t, "Family pack", map[uint]string{rice: "5"})
	is := f.issueToCenter(t, day(2024, 3, 2), tpl, hall, "2")
	require.Len(t, is.Lines, 1)
	assert.True(t, f.levelOf(t, rice).CurrentQuantity.Equal(dec("90")))

	items, err := f.packages.ListItems(f.ctx, tpl)
	require.NoError(t, err)
	require.Len(t, items, 1)
	_, err = f.packages.UpdateItem(f.ctx, items[0].ID, dec("8"), "bigger bag")
	require.NoError(t, err)

	assert.True(t, f.levelOf(t, rice).CurrentQuantity.Equal(dec("90")), "recorded issues keep their recipe")

	got, err := f.packages.GetIssue(f.ctx, is.ID)
	require.NoError(t, err)
	assert.True(t, got.Lines[0].QuantityPerPackage.Equal(dec("5")))
	assert.Equal(t, "Rice", got.Lines[0].Item.Name)
	assert.Equal(t, "Hall", got.Center.Name)
}

func TestIssueRecipientValidation(t *testing.T) {
	f := newFixture(t)
	rice := f.item(t, "Rice", "0")
	hall := f.center(t, "Hall")
	gn := f.division(t, "Kadawatha North")
	tpl := f.template(t, "Family pack", map[uint]string{rice: "1"})

	noRecipient := &models.CarePackageIssue{
		TemplateID: tpl, PackagesIssued: dec("1"), RecipientType: models.RecipientCenter,
		OfficerName: "R. Fernando", OfficerNIC: "781234567V",
	}
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(f.packages.CreateIssue(f.ctx, noRecipient)))

	toDivision := &models.CarePackageIssue{
		TemplateID: tpl, PackagesIssued: dec("1.5"), RecipientType: models.RecipientDivision,
		CenterID: &hall, DivisionID: &gn,
		OfficerName: "R. Fernando", OfficerNIC: "781234567V",
	}
	require.NoError(t, f.packages.CreateIssue(f.ctx, toDivision))
	got, err := f.packages.GetIssue(f.ctx, toDivision.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CenterID, "the other recipient is cleared")
	require.NotNil(t, got.DivisionID)
	assert.Equal(t, gn, *got.DivisionID)

	zero := &models.CarePackageIssue{
		TemplateID: tpl, PackagesIssued: dec("0"), RecipientType: models.RecipientCenter, CenterID: &hall,
		OfficerName: "R. Fernando", OfficerNIC: "781234567V",
	}
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(f.packages.CreateIssue(f.ctx, zero)))

	missingCenter := uint(404)
	ghost := &models.CarePackageIssue{
		TemplateID: tpl, PackagesIssued: dec("1"), RecipientType: models.RecipientCenter, CenterID: &missingCenter,
		OfficerName: "R. Fernando", OfficerNIC: "781234567V",
	}
	assert.Equal(t, apperr.KindReference, apperr.KindOf(f.packages.CreateIssue(f.ctx, ghost)))
}

func TestIssueRejectsEmptyOrInactiveTemplate(t *testing.T) {
	f := newFixture(t)
	rice := f.item(t, "Rice", "0")
	hall := f.center(t, "Hall")
	empty := f.template(t, "Empty", nil)
	retired := f.template(t, "Old pack", map[uint]string{rice: "1"})
	require.NoError(t, f.packages.Templates.SoftDelete(f.ctx, retired))

	for _, tpl := range []uint{empty, retired} {
		is := &models.CarePackageIssue{
			TemplateID: tpl, PackagesIssued: dec("1"), RecipientType: models.RecipientCenter, CenterID: &hall,
			OfficerName: "R. Fernando", OfficerNIC: "781234567V",
		}
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(f.packages.CreateIssue(f.ctx, is)))
	}
	assert.Zero(t, countRows(t, f, &models.CarePackageIssue{}))

	unknown := &models.CarePackageIssue{
		TemplateID: 999, PackagesIssued: dec("1"), RecipientType: models.RecipientCenter, CenterID: &hall,
		OfficerName: "R. Fernando", OfficerNIC: "781234567V",
	}
	assert.Equal(t, apperr.KindReference, apperr.KindOf(f.packages.CreateIssue(f.ctx, unknown)))
}

func TestUpdateIssueResnapshotsOnTemplateChange(t *testing.T) {
	f := newFixture(t)
	rice, dhal := f.item(t, "Rice", "0"), f.item(t, "Dhal", "0")
	hall := f.center(t, "Hall")
	small := f.template(t, "Small", map[uint]string{rice: "2"})
	large := f.template(t, "Large", map[uint]string{rice: "4", dhal: "1"})

	is := f.issueToCenter(t, day(2024, 3, 2), small, hall, "3")

	// same template: snapshot untouched
	same := *is
	same.Lines = nil
	same.PackagesIssued = dec("4")
	require.NoError(t, f.packages.UpdateIssue(f.ctx, is.ID, &same))
	got, err := f.packages.GetIssue(f.ctx, is.ID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.True(t, got.PackagesIssued.Equal(dec("4")))

	other := *got
	other.Lines = nil
	other.TemplateID = large
	require.NoError(t, f.packages.UpdateIssue(f.ctx, is.ID, &other))
	got, err = f.packages.GetIssue(f.ctx, is.ID)
	require.NoError(t, err)
	assert.Len(t, got.Lines, 2)
	assert.Equal(t, "Large", got.Template.Name)
	assert.True(t, f.levelOf(t, dhal).TotalCarePackages.Equal(dec("4")))

	require.NoError(t, f.packages.DeleteIssue(f.ctx, is.ID))
	assert.Zero(t, countRows(t, f, &models.CarePackageIssueLine{}))
	assert.True(t, f.levelOf(t, rice).TotalCarePackages.IsZero())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(f.packages.DeleteIssue(f.ctx, is.ID)))
}

func TestTemplateItems(t *testing.T) {
	f := newFixture(t)
	rice, dhal := f.item(t, "Rice", "0"), f.item(t, "Dhal", "0")
	src := f.template(t, "Source", map[uint]string{rice: "2.5", dhal: "1"})
	dst := f.template(t, "Target", nil)

	n, err := f.packages.CopyAllItems(f.ctx, src, dst)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	tpl, err := f.packages.GetTemplate(f.ctx, dst)
	require.NoError(t, err)
	require.Len(t, tpl.Items, 2)
	assert.NotNil(t, tpl.Items[0].Item)

	_, err = f.packages.CopyAllItems(f.ctx, src, src)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	_, err = f.packages.CopyAllItems(f.ctx, src, 999)
	assert.Equal(t, apperr.KindReference, apperr.KindOf(err))

	_, err = f.packages.UpdateItem(f.ctx, tpl.Items[0].ID, dec("0"), "")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	_, err = f.packages.UpdateItem(f.ctx, 999, dec("1"), "")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	require.NoError(t, f.packages.RemoveItem(f.ctx, tpl.Items[0].ID))
	items, err := f.packages.ListItems(f.ctx, dst)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(f.packages.RemoveItem(f.ctx, tpl.Items[0].ID)))

	err = f.packages.AddItem(f.ctx, &models.CarePackageTemplateItem{TemplateID: dst, ItemID: 999, QuantityPerPackage: dec("1")})
	assert.Equal(t, apperr.KindReference, apperr.KindOf(err))
}
