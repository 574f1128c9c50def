package payroll_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Vishal6374/hr-harmony-sub000/internal/authz"
	"github.com/Vishal6374/hr-harmony-sub000/internal/middleware"
	"github.com/Vishal6374/hr-harmony-sub000/internal/payroll"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

type fakePayrollService struct {
	payroll.Service

	generateCalls int
	generateFn    func(ctx context.Context, actor authz.Actor, req payroll.GeneratePayrollRequest) (payroll.GenerateResult, error)
}

func (f *fakePayrollService) Generate(ctx context.Context, actor authz.Actor, req payroll.GeneratePayrollRequest) (payroll.GenerateResult, error) {
	f.generateCalls++
	return f.generateFn(ctx, actor, req)
}

// newGenerateRouter mounts the generate endpoint the way the route table
// does: behind the idempotency middleware, with the auth context present.
func newGenerateRouter(h *payroll.Handler, rdb *redis.Client, employeeID, companyID string) http.Handler {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("employee_id", employeeID)
		c.Set("company_id", companyID)
		c.Set("role", "HR")
	})
	r.Use(middleware.Idempotency(rdb))
	r.POST("/payroll/batches", h.Generate)
	return r
}

func TestPayrollHandler_Generate_CachesResultAndReleasesLock(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()
	employeeID := uuid.New().String()

	svc := &fakePayrollService{
		generateFn: func(ctx context.Context, actor authz.Actor, req payroll.GeneratePayrollRequest) (payroll.GenerateResult, error) {
			assert.Equal(t, employeeID, actor.EmployeeID)
			assert.Equal(t, 9, req.Month)
			return payroll.GenerateResult{Batch: payroll.BatchResponse{ID: uuid.New().String(), Month: 9, Year: 2025}}, nil
		},
	}
	h := payroll.NewHandlerWithRedis(svc, rdb)

	cacheKey := "idemp:/payroll/batches:" + employeeID + ":batch-2025-09"
	lockKey := cacheKey + ":lock"

	redisMock.ExpectGet(cacheKey).RedisNil()
	redisMock.ExpectSetNX(lockKey, "locked", 30*time.Second).SetVal(true)
	redisMock.Regexp().ExpectSet(cacheKey, `.*`, 24*time.Hour).SetVal("OK")
	redisMock.ExpectDel(lockKey).SetVal(1)

	router := newGenerateRouter(h, rdb, employeeID, uuid.New().String())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payroll/batches", strings.NewReader(`{"month":9,"year":2025}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", "batch-2025-09")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, svc.generateCalls)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestPayrollHandler_Generate_ReplaysCachedResponse(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()
	employeeID := uuid.New().String()

	svc := &fakePayrollService{
		generateFn: func(ctx context.Context, actor authz.Actor, req payroll.GeneratePayrollRequest) (payroll.GenerateResult, error) {
			t.Fatal("service must not run on a replayed request")
			return payroll.GenerateResult{}, nil
		},
	}
	h := payroll.NewHandlerWithRedis(svc, rdb)

	cacheKey := "idemp:/payroll/batches:" + employeeID + ":batch-2025-09"
	cached, _ := json.Marshal(payroll.GenerateResult{Batch: payroll.BatchResponse{ID: "cached-batch", Month: 9, Year: 2025}})
	redisMock.ExpectGet(cacheKey).SetVal(string(cached))

	router := newGenerateRouter(h, rdb, employeeID, uuid.New().String())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payroll/batches", strings.NewReader(`{"month":9,"year":2025}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", "batch-2025-09")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, svc.generateCalls)
	assert.Contains(t, w.Body.String(), "cached-batch")
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestPayrollHandler_Generate_InFlightDuplicateRejected(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()
	employeeID := uuid.New().String()

	svc := &fakePayrollService{
		generateFn: func(ctx context.Context, actor authz.Actor, req payroll.GeneratePayrollRequest) (payroll.GenerateResult, error) {
			t.Fatal("service must not run while the first request holds the lock")
			return payroll.GenerateResult{}, nil
		},
	}
	h := payroll.NewHandlerWithRedis(svc, rdb)

	cacheKey := "idemp:/payroll/batches:" + employeeID + ":batch-2025-09"
	lockKey := cacheKey + ":lock"
	redisMock.ExpectGet(cacheKey).RedisNil()
	redisMock.ExpectSetNX(lockKey, "locked", 30*time.Second).SetVal(false)

	router := newGenerateRouter(h, rdb, employeeID, uuid.New().String())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payroll/batches", strings.NewReader(`{"month":9,"year":2025}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", "batch-2025-09")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 0, svc.generateCalls)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestPayrollHandler_Generate_NoKeySkipsRedis(t *testing.T) {
	rdb, redisMock := redismock.NewClientMock()
	employeeID := uuid.New().String()

	svc := &fakePayrollService{
		generateFn: func(ctx context.Context, actor authz.Actor, req payroll.GeneratePayrollRequest) (payroll.GenerateResult, error) {
			return payroll.GenerateResult{Batch: payroll.BatchResponse{ID: uuid.New().String()}}, nil
		},
	}
	h := payroll.NewHandlerWithRedis(svc, rdb)

	router := newGenerateRouter(h, rdb, employeeID, uuid.New().String())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payroll/batches", strings.NewReader(`{"month":9,"year":2025}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, svc.generateCalls)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}
