package recon

import (
	"testing"
	"time"

	"netkb/internal/database"
	"netkb/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDomain(t *testing.T) {
	assert.Equal(t, "CORP", NormalizeDomain("corp.local"))
	assert.Equal(t, "CORP", NormalizeDomain("CORP"))
	assert.Equal(t, "CORP", NormalizeDomain("corp"))
	assert.Equal(t, "SUB", NormalizeDomain("sub.corp.local"))
	assert.Equal(t, "", NormalizeDomain(""))
}

// ============== ReportHost Tests ==============

func TestReportHost_CreatesNewHost(t *testing.T) {
	db := testutil.SetupTestDB(t)
	e := New(db)

	id, err := e.ReportHost(HostObservation{
		IP:       "10.0.0.5",
		Hostname: testutil.Ptr("DC01"),
		Domain:   testutil.Ptr("corp.local"),
		OS:       testutil.Ptr("Windows Server 2019"),
		SMBv1:    testutil.Ptr(false),
		Signing:  testutil.Ptr(true),
		IsDC:     testutil.Ptr(true),
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	h, err := database.NewHostRepo(db).GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, "CORP", h.Domain, "domain stored in normalized form")
	assert.Equal(t, "DC01", h.Hostname)
	require.NotNil(t, h.IsDC)
	assert.True(t, *h.IsDC)
	assert.Nil(t, h.Spooler, "unprobed flag stays unknown")
}

func TestReportHost_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	e := New(db)

	obs := HostObservation{
		IP:       "10.0.0.5",
		Hostname: testutil.Ptr("DC01"),
		Domain:   testutil.Ptr("CORP"),
		SMBv1:    testutil.Ptr(false),
	}
	id1, err := e.ReportHost(obs)
	require.NoError(t, err)
	id2, err := e.ReportHost(obs)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	hosts, err := database.NewHostRepo(db).Find("", "")
	require.NoError(t, err)
	assert.Len(t, hosts, 1, "identical reports must produce exactly one row")
}

func TestReportHost_MergeNotReplace(t *testing.T) {
	db := testutil.SetupTestDB(t)
	e := New(db)

	_, err := e.ReportHost(HostObservation{
		IP:       "10.0.0.5",
		Hostname: testutil.Ptr("DC01"),
		Domain:   testutil.Ptr("CORP"),
		OS:       testutil.Ptr("Windows Server 2019"),
		Signing:  testutil.Ptr(true),
	})
	require.NoError(t, err)

	// Second observation carries only a new zerologon result.
	id, err := e.ReportHost(HostObservation{
		IP:        "10.0.0.5",
		Zerologon: testutil.Ptr(true),
	})
	require.NoError(t, err)

	h, err := database.NewHostRepo(db).GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, "DC01", h.Hostname, "absent field must not clear stored value")
	assert.Equal(t, "Windows Server 2019", h.OS)
	require.NotNil(t, h.Signing)
	assert.True(t, *h.Signing)
	require.NotNil(t, h.Zerologon)
	assert.True(t, *h.Zerologon)
}

func TestReportHost_DCThenHostnameScenario(t *testing.T) {
	db := testutil.SetupTestDB(t)
	e := New(db)

	_, err := e.ReportHost(HostObservation{IP: "10.0.0.5", IsDC: testutil.Ptr(true)})
	require.NoError(t, err)
	_, err = e.ReportHost(HostObservation{IP: "10.0.0.5", Hostname: testutil.Ptr("DC01")})
	require.NoError(t, err)

	hosts, err := database.NewHostRepo(db).Find("", "")
	require.NoError(t, err)
	require.Len(t, hosts, 1)
	assert.Equal(t, "DC01", hosts[0].Hostname)
	require.NotNil(t, hosts[0].IsDC)
	assert.True(t, *hosts[0].IsDC)
}

func TestReportHost_EmptyIPRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)

	_, err := New(db).ReportHost(HostObservation{})
	assert.ErrorIs(t, err, ErrValidation)
}

// ============== ReportCredential Tests ==============

func TestReportCredential_CreatesNewCredential(t *testing.T) {
	db := testutil.SetupTestDB(t)
	e := New(db)

	id, err := e.ReportCredential(database.SecretTypePlaintext, "corp.local", "admin", "hunter2", nil, nil)
	require.NoError(t, err)
	require.NotZero(t, id)

	c, err := database.NewCredentialRepo(db).GetByID(id)
	require.NoError(t, err)
	assert.Equal(t, "CORP", c.Domain)
	assert.Equal(t, "hunter2", c.Secret)
}

func TestReportCredential_DomainNormalizationDedupes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	e := New(db)

	id1, err := e.ReportCredential(database.SecretTypePlaintext, "corp.local", "admin", "hunter2", nil, nil)
	require.NoError(t, err)
	id2, err := e.ReportCredential(database.SecretTypePlaintext, "CORP", "admin", "hunter2", nil, nil)
	require.NoError(t, err)

	// the second report matches the first row as a duplicate; since the
	// row is populated it is frozen and no write happens
	assert.NotZero(t, id1)
	assert.Zero(t, id2)

	creds, err := database.NewCredentialRepo(db).Find("", "")
	require.NoError(t, err)
	require.Len(t, creds, 1)
	assert.Equal(t, "CORP", creds[0].Domain)
}

func TestReportCredential_CompletesBarePlaceholder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	e := New(db)

	uid, err := e.ReportUser("CORP", "svc_backup", nil)
	require.NoError(t, err)
	require.NotZero(t, uid)

	host, err := e.ReportHost(HostObservation{IP: "10.0.0.5"})
	require.NoError(t, err)

	id, err := e.ReportCredential(database.SecretTypeHash, "CORP", "svc_backup", "aad3b435b51404ee...", nil, &host)
	require.NoError(t, err)
	assert.Equal(t, uid, id, "placeholder is completed in place, not duplicated")

	creds, err := database.NewCredentialRepo(db).FindByUser("CORP", "svc_backup")
	require.NoError(t, err)
	require.Len(t, creds, 1)
	assert.Equal(t, "aad3b435b51404ee...", creds[0].Secret)
	require.NotNil(t, creds[0].PillagedFromHostID)
	assert.Equal(t, host, *creds[0].PillagedFromHostID)
}

func TestReportCredential_PopulatedRowIsFrozen(t *testing.T) {
	db := testutil.SetupTestDB(t)
	e := New(db)

	_, err := e.ReportCredential(database.SecretTypePlaintext, "CORP", "admin", "oldpass", nil, nil)
	require.NoError(t, err)

	// Reporting a different secret for the same candidate key neither
	// overwrites the populated row nor creates a new one. Surprising but
	// deliberate: only bare placeholders are completed.
	id, err := e.ReportCredential(database.SecretTypePlaintext, "CORP", "admin", "newpass", nil, nil)
	require.NoError(t, err)
	assert.Zero(t, id, "no write happened")

	creds, err := database.NewCredentialRepo(db).FindByUser("CORP", "admin")
	require.NoError(t, err)
	require.Len(t, creds, 1)
	assert.Equal(t, "oldpass", creds[0].Secret)
}

func TestReportCredential_DanglingGroupIsSilentNoop(t *testing.T) {
	db := testutil.SetupTestDB(t)
	e := New(db)

	missing := uint(999)
	id, err := e.ReportCredential(database.SecretTypeHash, "CORP", "admin", "secret", &missing, nil)
	require.NoError(t, err)
	assert.Zero(t, id)

	creds, err := database.NewCredentialRepo(db).Find("", "")
	require.NoError(t, err)
	assert.Empty(t, creds, "rejected write must not leave a credential behind")

	rels, err := database.NewGroupRelationRepo(db).Find(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, rels, "rejected write must not leave a relation behind")
}

func TestReportCredential_DanglingPillageHostIsSilentNoop(t *testing.T) {
	db := testutil.SetupTestDB(t)
	e := New(db)

	missing := uint(42)
	id, err := e.ReportCredential(database.SecretTypeHash, "CORP", "admin", "secret", nil, &missing)
	require.NoError(t, err)
	assert.Zero(t, id)

	creds, err := database.NewCredentialRepo(db).Find("", "")
	require.NoError(t, err)
	assert.Empty(t, creds)
}

func TestReportCredential_NewRowLinksGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	e := New(db)

	gid, err := e.ReportGroup("CORP", "Domain Admins", nil)
	require.NoError(t, err)

	id, err := e.ReportCredential(database.SecretTypeHash, "CORP", "admin", "secret", &gid, nil)
	require.NoError(t, err)
	require.NotZero(t, id)

	rels, err := database.NewGroupRelationRepo(db).Find(&id, &gid)
	require.NoError(t, err)
	assert.Len(t, rels, 1)
}

// ============== ReportUser Tests ==============

func TestReportUser_CreatesBarePlaceholder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	e := New(db)

	id, err := e.ReportUser("corp.local", "jdoe", nil)
	require.NoError(t, err)
	require.NotZero(t, id)

	c, err := database.NewCredentialRepo(db).GetByID(id)
	require.NoError(t, err)
	assert.True(t, c.IsBarePlaceholder())
	assert.Equal(t, "CORP", c.Domain)
}

func TestReportUser_ExistingUserReused(t *testing.T) {
	db := testutil.SetupTestDB(t)
	e := New(db)

	id1, err := e.ReportUser("CORP", "jdoe", nil)
	require.NoError(t, err)
	id2, err := e.ReportUser("corp.local", "JDOE", nil)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	creds, err := database.NewCredentialRepo(db).Find("", "")
	require.NoError(t, err)
	assert.Len(t, creds, 1)
}

func TestReportUser_GroupLinkIsDeduped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	e := New(db)

	gid, err := e.ReportGroup("CORP", "Domain Users", nil)
	require.NoError(t, err)

	id1, err := e.ReportUser("CORP", "jdoe", &gid)
	require.NoError(t, err)
	_, err = e.ReportUser("CORP", "jdoe", &gid)
	require.NoError(t, err)

	rels, err := database.NewGroupRelationRepo(db).Find(&id1, &gid)
	require.NoError(t, err)
	assert.Len(t, rels, 1)
}

func TestReportUser_DanglingGroupIsSilentNoop(t *testing.T) {
	db := testutil.SetupTestDB(t)
	e := New(db)

	missing := uint(7)
	id, err := e.ReportUser("CORP", "jdoe", &missing)
	require.NoError(t, err)
	assert.Zero(t, id)

	creds, err := database.NewCredentialRepo(db).Find("", "")
	require.NoError(t, err)
	assert.Empty(t, creds)
}

// ============== ReportGroup Tests ==============

func TestReportGroup_CreatesThenUpdates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	e := New(db)

	id1, err := e.ReportGroup("test.local", "Domain Admins", testutil.Ptr(5))
	require.NoError(t, err)

	g, err := database.NewGroupRepo(db).GetByID(id1)
	require.NoError(t, err)
	require.NotNil(t, g.LastQueriedAt)
	firstQuery := *g.LastQueriedAt

	time.Sleep(10 * time.Millisecond)

	id2, err := e.ReportGroup("TEST", "domain admins", testutil.Ptr(7))
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	groups, err := database.NewGroupRepo(db).Find("")
	require.NoError(t, err)
	require.Len(t, groups, 1, "same candidate key must not create a second row")
	require.NotNil(t, groups[0].ADMemberCount)
	assert.Equal(t, 7, *groups[0].ADMemberCount)
	require.NotNil(t, groups[0].LastQueriedAt)
	assert.True(t, groups[0].LastQueriedAt.After(firstQuery), "timestamp refreshed on update")
}

func TestReportGroup_NoCountLeavesTimestampUntouched(t *testing.T) {
	db := testutil.SetupTestDB(t)
	e := New(db)

	id, err := e.ReportGroup("CORP", "Backup Operators", nil)
	require.NoError(t, err)

	g, err := database.NewGroupRepo(db).GetByID(id)
	require.NoError(t, err)
	assert.Nil(t, g.ADMemberCount)
	assert.Nil(t, g.LastQueriedAt)

	// re-report without a count: still no stamp
	_, err = e.ReportGroup("CORP", "Backup Operators", nil)
	require.NoError(t, err)
	g, err = database.NewGroupRepo(db).GetByID(id)
	require.NoError(t, err)
	assert.Nil(t, g.LastQueriedAt)
}

// ============== RemoveCredentials Tests ==============

func TestRemoveCredentials(t *testing.T) {
	db := testutil.SetupTestDB(t)
	e := New(db)

	id1, err := e.ReportCredential(database.SecretTypeHash, "CORP", "a", "s1", nil, nil)
	require.NoError(t, err)
	id2, err := e.ReportCredential(database.SecretTypeHash, "CORP", "b", "s2", nil, nil)
	require.NoError(t, err)

	require.NoError(t, e.RemoveCredentials([]uint{id1}))

	creds, err := e.GetCredentials("", "")
	require.NoError(t, err)
	require.Len(t, creds, 1)
	assert.Equal(t, id2, creds[0].ID)
}
