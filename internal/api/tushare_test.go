package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ipoTracker/internal/model"
)

var fetchNow = time.Date(2024, 1, 10, 9, 0, 0, 0, time.Local)

func newTestClient(url string) *Client {
	c := NewClient()
	c.URL = url
	return c
}

// 按位数组响应：两条记录，第二条无申购日应被剔除。
const positionalResp = `{
  "code": 0, "msg": "",
  "data": {
    "fields": ["ts_code","name","ipo_date","issue_date","amount","market","price","pe","limit_amount","funds","ballot"],
    "items": [
      ["688001.SH","华兴源创","20240115","20240125",4010,"科创板",24.26,41.08,1.05,10.09,0.06],
      ["301999.SZ","某某科技","","",3000,"创业板",null,null,null,null,null]
    ]
  }
}`

func TestFetchUpcomingPositional(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		w.Write([]byte(positionalResp))
	}))
	defer srv.Close()

	recs, err := newTestClient(srv.URL).FetchUpcoming(context.Background(), "tok", fetchNow)
	if err != nil {
		t.Fatalf("FetchUpcoming: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("len = %d, want 1 (无申购日的记录应剔除)", len(recs))
	}
	r := recs[0]
	if r.Name != "华兴源创" || r.Code != "688001" || r.Date != "2024-01-15" {
		t.Errorf("基础字段不符: %+v", r)
	}
	if r.Market != "科创板" {
		t.Errorf("market = %q, want 科创板", r.Market)
	}
	if r.Price == nil || *r.Price != 24.26 {
		t.Errorf("price = %v, want 24.26", r.Price)
	}
	if r.MaxSubscription != 10500 {
		t.Errorf("maxSubscription = %d, want 10500 (1.05万股)", r.MaxSubscription)
	}
	if r.RequiredMarketValue.Shanghai != 11 || r.RequiredMarketValue.Shenzhen != 21 {
		t.Errorf("requiredMarketValue = %+v, want {11 21}", r.RequiredMarketValue)
	}
	if !r.PERatio.Valid || r.PERatio.Value != 41.08 {
		t.Errorf("peRatio = %+v, want 41.08", r.PERatio)
	}
	if r.ExpectedFundraise != "10.09亿" {
		t.Errorf("expectedFundraise = %q, want 10.09亿", r.ExpectedFundraise)
	}
	if r.ListingDate != "2024-01-25" {
		t.Errorf("listingDate = %q, want 2024-01-25", r.ListingDate)
	}
	if r.Industry != model.Pending {
		t.Errorf("industry = %q, want %q", r.Industry, model.Pending)
	}
}

// 键值对象响应：缺失字段落到占位值，不崩溃。
const keyedResp = `{
  "code": 0,
  "data": {
    "items": [
      {"ts_code": "000999.SZ", "ipo_date": "20240120"}
    ]
  }
}`

func TestFetchUpcomingKeyed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(keyedResp))
	}))
	defer srv.Close()

	recs, err := newTestClient(srv.URL).FetchUpcoming(context.Background(), "tok", fetchNow)
	if err != nil {
		t.Fatalf("FetchUpcoming: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("len = %d, want 1", len(recs))
	}
	r := recs[0]
	if r.Name != model.Unknown {
		t.Errorf("name = %q, want %q", r.Name, model.Unknown)
	}
	if r.Code != "000999" || r.Date != "2024-01-20" {
		t.Errorf("基础字段不符: %+v", r)
	}
	if r.Price != nil {
		t.Errorf("price = %v, want nil", r.Price)
	}
	if r.MaxSubscription != 0 {
		t.Errorf("maxSubscription = %d, want 0", r.MaxSubscription)
	}
	// 上限缺失时代入默认股数估算门槛
	if r.RequiredMarketValue.Shanghai < 1 || r.RequiredMarketValue.Shenzhen < 1 {
		t.Errorf("requiredMarketValue = %+v, 门槛不应低于 1", r.RequiredMarketValue)
	}
	if r.PERatio.Valid {
		t.Errorf("peRatio 缺失应为占位: %+v", r.PERatio)
	}
	if r.ExpectedFundraise != model.Pending || r.ListingDate != model.Pending {
		t.Errorf("缺失字段应为 %q: %+v", model.Pending, r)
	}
}

func TestFetchUpcomingMissingToken(t *testing.T) {
	if _, err := NewClient().FetchUpcoming(context.Background(), "  ", fetchNow); err == nil {
		t.Fatal("token 缺失应报错")
	}
}

// 接口异常一律降级为空列表，流水线继续、页面刷新为空。
func TestFetchUpcomingDegradesToEmpty(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"http 500", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"tushare error code", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"code": 2002, "msg": "token invalid", "data": null}`))
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json at all`))
		}},
		{"missing items", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"code": 0, "data": {}}`))
		}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			srv := httptest.NewServer(c.handler)
			defer srv.Close()
			recs, err := newTestClient(srv.URL).FetchUpcoming(context.Background(), "tok", fetchNow)
			if err != nil {
				t.Fatalf("降级路径不应返回错误: %v", err)
			}
			if len(recs) != 0 {
				t.Errorf("len = %d, want 0", len(recs))
			}
		})
	}
}

func TestFetchUpcomingUnreachable(t *testing.T) {
	c := newTestClient("http://127.0.0.1:1")
	recs, err := c.FetchUpcoming(context.Background(), "tok", fetchNow)
	if err != nil {
		t.Fatalf("连接失败应降级为空: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("len = %d, want 0", len(recs))
	}
}
