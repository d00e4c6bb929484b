package protocol

import (
	"errors"
	"testing"

	"credential-ledger/pkg/events"
	"credential-ledger/pkg/logger"
	"credential-ledger/pkg/timeutil"
	"credential-ledger/src/aggregation"
	"credential-ledger/src/credential"
	"credential-ledger/src/database"
	"credential-ledger/src/encops"
	"credential-ledger/src/model"
	"credential-ledger/src/oracle"
	"credential-ledger/src/proof"
	"credential-ledger/src/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testSchemeKey  = "0000000000000000000000000000000000000000000000000000000000000001"
	testHolderId   = "holder-1"
	testIssuerId   = "issuer-1"
	testLedgerTime = int64(1_700_000_000)
)

// capturedRequest records what a RequestDecryption call submitted.
type capturedRequest struct {
	RequestId string
	Kind      model.RequestKind
	Handles   [][]byte
}

// fakeOracleClient stands in for the AMQP client: it keeps requests in memory
// so tests can play the oracle side, and fails the publish when asked to.
type fakeOracleClient struct {
	requests   []capturedRequest
	publishErr error
}

func (f *fakeOracleClient) RequestDecryption(requestId string, handles [][]byte, kind model.RequestKind) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.requests = append(f.requests, capturedRequest{
		RequestId: requestId,
		Kind:      kind,
		Handles:   handles,
	})
	return nil
}

func (f *fakeOracleClient) last() capturedRequest {
	return f.requests[len(f.requests)-1]
}

type protocolFixture struct {
	db       *gorm.DB
	scheme   *encops.SealedScheme
	attestor *oracle.HmacAttestor
	client   *fakeOracleClient
	service  *Service
}

func newFixture(t *testing.T) *protocolFixture {
	t.Helper()
	logger.InitDefaultLogger(logger.GlobalLoggerConfig{})

	db, err := database.OpenTestDatabase(t.Name())
	require.NoError(t, err)

	scheme, err := encops.NewSealedScheme(testSchemeKey)
	require.NoError(t, err)

	attestor := oracle.NewHmacAttestor([]byte("shared-test-secret"))
	client := &fakeOracleClient{}

	service := NewService(db, client, attestor, aggregation.NewEngine(scheme), events.NewBus()).
		WithClock(func() timeutil.TimeUTC { return timeutil.TimeUTC{T: testLedgerTime} })

	return &protocolFixture{
		db:       db,
		scheme:   scheme,
		attestor: attestor,
		client:   client,
		service:  service,
	}
}

func (f *protocolFixture) addCredential(t *testing.T, credType, attr, expiry uint64) {
	t.Helper()

	encType, err := f.scheme.Encrypt(credType)
	require.NoError(t, err)
	encAttr, err := f.scheme.Encrypt(attr)
	require.NoError(t, err)
	encExpiry, err := f.scheme.Encrypt(expiry)
	require.NoError(t, err)

	repo := credential.NewRepository(f.db)
	count, err := repo.CountByHolder(testHolderId)
	require.NoError(t, err)

	require.NoError(t, repo.Create(&model.Credential{
		HolderId:      testHolderId,
		Seq:           int(count),
		Issuer:        testIssuerId,
		EncType:       encType.Bytes(),
		EncAttributes: encAttr.Bytes(),
		EncExpiry:     encExpiry.Bytes(),
		CreatedAt:     testLedgerTime,
	}))
}

// oracleAnswer plays the oracle: decrypts the captured handles, signs the
// cleartexts and builds the callback message.
func (f *protocolFixture) oracleAnswer(t *testing.T, req capturedRequest) oracle.DecryptionResultDto {
	t.Helper()

	cleartexts := make([]uint64, 0, len(req.Handles))
	for _, h := range req.Handles {
		v, err := f.scheme.Decrypt(encops.FromBytes(h))
		require.NoError(t, err)
		cleartexts = append(cleartexts, v)
	}

	return oracle.DecryptionResultDto{
		RequestId:   req.RequestId,
		Cleartexts:  cleartexts,
		Scheme:      f.attestor.Scheme(),
		Attestation: f.attestor.Sign(req.RequestId, cleartexts),
	}
}

func (f *protocolFixture) decryptScore(t *testing.T) uint64 {
	t.Helper()

	p, err := proof.NewRepository(f.db).GetByHolder(testHolderId)
	require.NoError(t, err)

	v, err := f.scheme.Decrypt(encops.FromBytes(p.Score))
	require.NoError(t, err)
	return v
}

func (f *protocolFixture) outboxEventTypes(t *testing.T) []string {
	t.Helper()

	var rows []model.OutboxEvent
	require.NoError(t, f.db.Order("id asc").Find(&rows).Error)

	types := make([]string, 0, len(rows))
	for _, r := range rows {
		types = append(types, r.EventType)
	}
	return types
}

func TestRequestProofGenerationWithoutCredentials(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.RequestProofGeneration(testHolderId)

	assert.ErrorIs(t, err, ErrNoCredentials)
	assert.Empty(t, f.client.requests)

	var pending int64
	require.NoError(t, f.db.Model(&model.PendingRequest{}).Count(&pending).Error)
	assert.Zero(t, pending)
}

func TestFailedPublishLeavesRegistrationCommitted(t *testing.T) {
	f := newFixture(t)
	f.addCredential(t, 3, 4, uint64(testLedgerTime)+1000)

	f.client.publishErr = errors.New("broker unavailable")
	_, err := f.service.RequestProofGeneration(testHolderId)
	assert.Error(t, err)
	assert.Empty(t, f.client.requests)

	// the registration committed before the publish was attempted; the row
	// stays pending and unanswered, which is a legal protocol state
	var pending []model.PendingRequest
	require.NoError(t, f.db.Find(&pending).Error)
	require.Len(t, pending, 1)
	assert.Equal(t, testHolderId, pending[0].HolderId)

	// a retry mints a fresh id and goes out on the wire
	f.client.publishErr = nil
	requestId, err := f.service.RequestProofGeneration(testHolderId)
	require.NoError(t, err)
	require.Len(t, f.client.requests, 1)
	assert.Equal(t, requestId, f.client.last().RequestId)
	assert.NotEqual(t, pending[0].RequestId, requestId)
}

func TestAggregationRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.addCredential(t, 3, 4, uint64(testLedgerTime)+1000) // valid
	f.addCredential(t, 5, 2, uint64(testLedgerTime)-1000) // expired

	requestId, err := f.service.RequestProofGeneration(testHolderId)
	require.NoError(t, err)
	require.NotEmpty(t, requestId)

	req := f.client.last()
	assert.Equal(t, model.RequestKindAggregate, req.Kind)
	assert.Len(t, req.Handles, 6)

	require.NoError(t, f.service.HandleDecryptionResult(f.oracleAnswer(t, req)))

	// only the valid credential contributes: 3*4/1 = 12
	assert.Equal(t, uint64(12), f.decryptScore(t))

	status, err := f.service.GetHolderStatus(testHolderId)
	require.NoError(t, err)
	assert.Equal(t, StateProofReady, status.State)
	assert.True(t, status.HasProof)
	assert.False(t, status.Revealed)

	assert.Equal(t, []string{model.EventProofGenerationRequested, model.EventProofGenerated}, f.outboxEventTypes(t))
}

func TestForgedAttestationMutatesNothing(t *testing.T) {
	f := newFixture(t)
	f.addCredential(t, 3, 4, uint64(testLedgerTime)+1000)

	_, err := f.service.RequestProofGeneration(testHolderId)
	require.NoError(t, err)

	result := f.oracleAnswer(t, f.client.last())
	result.Attestation[0] ^= 0xff

	err = f.service.HandleDecryptionResult(result)
	assert.ErrorIs(t, err, ErrProofVerificationFailed)

	_, err = proof.NewRepository(f.db).GetByHolder(testHolderId)
	assert.ErrorIs(t, err, proof.ErrNotFound)

	// the pending request survives, so the genuine callback can still land
	_, err = registry.NewRepository(f.db).Resolve(f.client.last().RequestId)
	assert.NoError(t, err)
}

func TestTamperedCleartextsFailVerification(t *testing.T) {
	f := newFixture(t)
	f.addCredential(t, 3, 4, uint64(testLedgerTime)+1000)

	_, err := f.service.RequestProofGeneration(testHolderId)
	require.NoError(t, err)

	result := f.oracleAnswer(t, f.client.last())
	result.Cleartexts[0] = 999

	err = f.service.HandleDecryptionResult(result)
	assert.ErrorIs(t, err, ErrProofVerificationFailed)
}

func TestUnknownRequestIdRejected(t *testing.T) {
	f := newFixture(t)

	err := f.service.HandleDecryptionResult(oracle.DecryptionResultDto{
		RequestId:   "never-registered",
		Cleartexts:  []uint64{1, 2, 3},
		Attestation: f.attestor.Sign("never-registered", []uint64{1, 2, 3}),
	})

	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestReplayedCallbackRejected(t *testing.T) {
	f := newFixture(t)
	f.addCredential(t, 3, 4, uint64(testLedgerTime)+1000)

	_, err := f.service.RequestProofGeneration(testHolderId)
	require.NoError(t, err)

	result := f.oracleAnswer(t, f.client.last())
	require.NoError(t, f.service.HandleDecryptionResult(result))

	err = f.service.HandleDecryptionResult(result)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestMalformedBatchRejectedAsInvalidRequest(t *testing.T) {
	f := newFixture(t)
	f.addCredential(t, 3, 4, uint64(testLedgerTime)+1000)

	_, err := f.service.RequestProofGeneration(testHolderId)
	require.NoError(t, err)

	req := f.client.last()
	cleartexts := []uint64{1, 2} // not a multiple of three
	err = f.service.HandleDecryptionResult(oracle.DecryptionResultDto{
		RequestId:   req.RequestId,
		Cleartexts:  cleartexts,
		Attestation: f.attestor.Sign(req.RequestId, cleartexts),
	})

	assert.ErrorIs(t, err, ErrInvalidRequest)

	// the failed fulfillment rolled back, including the registry consume
	_, err = registry.NewRepository(f.db).Resolve(req.RequestId)
	assert.NoError(t, err)
}

func TestAllExpiredIsSilentNoOp(t *testing.T) {
	f := newFixture(t)
	f.addCredential(t, 3, 4, uint64(testLedgerTime)+1000)

	// first aggregation writes a proof
	_, err := f.service.RequestProofGeneration(testHolderId)
	require.NoError(t, err)
	require.NoError(t, f.service.HandleDecryptionResult(f.oracleAnswer(t, f.client.last())))
	require.Equal(t, uint64(12), f.decryptScore(t))

	// second aggregation sees only expired credentials
	f.addCredential(t, 9, 9, uint64(testLedgerTime)-500)
	expiredOnly := f.service.WithClock(func() timeutil.TimeUTC {
		return timeutil.TimeUTC{T: testLedgerTime + 5000}
	})

	_, err = expiredOnly.RequestProofGeneration(testHolderId)
	require.NoError(t, err)
	require.NoError(t, expiredOnly.HandleDecryptionResult(f.oracleAnswer(t, f.client.last())))

	// prior proof untouched, generated event still emitted
	assert.Equal(t, uint64(12), f.decryptScore(t))
	assert.Equal(t, []string{
		model.EventProofGenerationRequested,
		model.EventProofGenerated,
		model.EventProofGenerationRequested,
		model.EventProofGenerated,
	}, f.outboxEventTypes(t))
}

func TestLastCallbackWins(t *testing.T) {
	f := newFixture(t)
	f.addCredential(t, 3, 4, uint64(testLedgerTime)+1000)

	_, err := f.service.RequestProofGeneration(testHolderId)
	require.NoError(t, err)
	first := f.client.requests[0]

	f.addCredential(t, 5, 2, uint64(testLedgerTime)+1000)
	_, err = f.service.RequestProofGeneration(testHolderId)
	require.NoError(t, err)
	second := f.client.requests[1]

	// callbacks land in reverse submission order
	require.NoError(t, f.service.HandleDecryptionResult(f.oracleAnswer(t, second)))
	require.NoError(t, f.service.HandleDecryptionResult(f.oracleAnswer(t, first)))

	// the later-delivered callback carried only the first credential's batch
	assert.Equal(t, uint64(12), f.decryptScore(t))
}

func TestRevealRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.addCredential(t, 3, 4, uint64(testLedgerTime)+1000)

	_, err := f.service.RequestProofGeneration(testHolderId)
	require.NoError(t, err)
	require.NoError(t, f.service.HandleDecryptionResult(f.oracleAnswer(t, f.client.last())))

	_, err = f.service.RequestReveal(testHolderId)
	require.NoError(t, err)

	req := f.client.last()
	assert.Equal(t, model.RequestKindReveal, req.Kind)
	assert.Len(t, req.Handles, 1)

	require.NoError(t, f.service.HandleDecryptionResult(f.oracleAnswer(t, req)))

	p, err := proof.NewRepository(f.db).GetByHolder(testHolderId)
	require.NoError(t, err)
	assert.True(t, p.Revealed)

	status, err := f.service.GetHolderStatus(testHolderId)
	require.NoError(t, err)
	assert.Equal(t, StateRevealed, status.State)
}

func TestRevealPreconditions(t *testing.T) {
	f := newFixture(t)

	// no credentials at all
	_, err := f.service.RequestReveal(testHolderId)
	assert.ErrorIs(t, err, ErrNoCredentials)

	// credentials but no proof
	f.addCredential(t, 3, 4, uint64(testLedgerTime)+1000)
	_, err = f.service.RequestReveal(testHolderId)
	assert.ErrorIs(t, err, ErrNoProof)

	// full flow, then a second reveal on the revealed proof
	_, err = f.service.RequestProofGeneration(testHolderId)
	require.NoError(t, err)
	require.NoError(t, f.service.HandleDecryptionResult(f.oracleAnswer(t, f.client.last())))

	_, err = f.service.RequestReveal(testHolderId)
	require.NoError(t, err)
	require.NoError(t, f.service.HandleDecryptionResult(f.oracleAnswer(t, f.client.last())))

	requestsBefore := len(f.client.requests)
	_, err = f.service.RequestReveal(testHolderId)
	assert.ErrorIs(t, err, ErrAlreadyRevealed)
	assert.Len(t, f.client.requests, requestsBefore)
}

func TestStatusProgression(t *testing.T) {
	f := newFixture(t)

	status, err := f.service.GetHolderStatus(testHolderId)
	require.NoError(t, err)
	assert.Equal(t, StateNoCredentials, status.State)

	f.addCredential(t, 3, 4, uint64(testLedgerTime)+1000)
	status, err = f.service.GetHolderStatus(testHolderId)
	require.NoError(t, err)
	assert.Equal(t, StateHasCredentials, status.State)
	assert.Equal(t, int64(1), status.CredentialCount)

	_, err = f.service.RequestProofGeneration(testHolderId)
	require.NoError(t, err)
	status, err = f.service.GetHolderStatus(testHolderId)
	require.NoError(t, err)
	assert.Equal(t, StateProofRequested, status.State)

	require.NoError(t, f.service.HandleDecryptionResult(f.oracleAnswer(t, f.client.last())))
	status, err = f.service.GetHolderStatus(testHolderId)
	require.NoError(t, err)
	assert.Equal(t, StateProofReady, status.State)

	_, err = f.service.RequestReveal(testHolderId)
	require.NoError(t, err)
	status, err = f.service.GetHolderStatus(testHolderId)
	require.NoError(t, err)
	assert.Equal(t, StateRevealRequested, status.State)
}
