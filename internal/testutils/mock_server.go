package testutils

import (
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/Alxzu/bcu-usd-billete/internal/config"
)

// Servlet paths mirroring the BCU deployment layout.
const (
	CurrenciesPath  = "/awsbcumonedas"
	QuotationsPath  = "/awsbcucotizaciones"
	LastClosingPath = "/awsultimocierre"
)

// DefaultCurrenciesXML is a currency catalog holding the USD cash entry.
const DefaultCurrenciesXML = `<?xml version="1.0" encoding="UTF-8"?>
<SOAP-ENV:Envelope xmlns:SOAP-ENV="http://schemas.xmlsoap.org/soap/envelope/"><SOAP-ENV:Body>
<Response><Salida>
<Moneda><Codigo>1111</Codigo><Nombre>EURO</Nombre></Moneda>
<Moneda><Codigo>2224</Codigo><Nombre>DÓLAR USA CABLE</Nombre></Moneda>
<Moneda><Codigo>2225</Codigo><Nombre>DLS. USA BILLETE</Nombre></Moneda>
</Salida></Response>
</SOAP-ENV:Body></SOAP-ENV:Envelope>`

// DefaultQuotationsXML carries one USD cash row for 2024-03-15.
const DefaultQuotationsXML = `<?xml version="1.0" encoding="UTF-8"?>
<SOAP-ENV:Envelope xmlns:SOAP-ENV="http://schemas.xmlsoap.org/soap/envelope/"><SOAP-ENV:Body>
<Response><Salida>
<respuestastatus><status>1</status><codigoerror>0</codigoerror></respuestastatus>
<datoscotizaciones><datoscotizacion>
<Fecha>2024-03-15</Fecha><Moneda>2225</Moneda><Nombre>DLS. USA BILLETE</Nombre>
<CodigoISO>USD</CodigoISO><Emisor>EE.UU.</Emisor>
<TCC>38.55</TCC><TCV>40.95</TCV>
<ArbAct>1.0817</ArbAct><FormaArbitrar>MULTIPLICAR</FormaArbitrar>
</datoscotizacion></datoscotizaciones>
</Salida></Response>
</SOAP-ENV:Body></SOAP-ENV:Envelope>`

// NoDataQuotationsXML is the sentinel-100 "no quotation for that date" answer.
const NoDataQuotationsXML = `<?xml version="1.0" encoding="UTF-8"?>
<SOAP-ENV:Envelope xmlns:SOAP-ENV="http://schemas.xmlsoap.org/soap/envelope/"><SOAP-ENV:Body>
<Response><Salida>
<respuestastatus><status>0</status><codigoerror>100</codigoerror><mensaje>No existe cotización para la fecha</mensaje></respuestastatus>
</Salida></Response>
</SOAP-ENV:Body></SOAP-ENV:Envelope>`

// DefaultLastClosingXML answers 2024-03-15 as the last business day.
const DefaultLastClosingXML = `<?xml version="1.0" encoding="UTF-8"?>
<SOAP-ENV:Envelope xmlns:SOAP-ENV="http://schemas.xmlsoap.org/soap/envelope/"><SOAP-ENV:Body>
<Response><Salida><Fecha>2024-03-15</Fecha></Salida></Response>
</SOAP-ENV:Body></SOAP-ENV:Envelope>`

// MockBCUServer fakes the three BCU servlets behind one httptest server.
// GET requests (WSDL probes) always succeed; POST requests answer the canned
// envelope configured per path.
type MockBCUServer struct {
	server *httptest.Server

	mu        sync.Mutex
	responses map[string]string
	statuses  map[string]int
}

// NewMockBCUServer creates a mock upstream preloaded with healthy defaults.
func NewMockBCUServer() *MockBCUServer {
	mock := &MockBCUServer{
		responses: map[string]string{
			CurrenciesPath:  DefaultCurrenciesXML,
			QuotationsPath:  DefaultQuotationsXML,
			LastClosingPath: DefaultLastClosingXML,
		},
		statuses: map[string]int{},
	}
	mock.server = httptest.NewServer(http.HandlerFunc(mock.handler))
	return mock
}

func (m *MockBCUServer) handler(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		w.Header().Set("Content-Type", "text/xml")
		w.Write([]byte(`<definitions/>`))
		return
	}

	m.mu.Lock()
	response, found := m.responses[r.URL.Path]
	status := m.statuses[r.URL.Path]
	m.mu.Unlock()

	if status != 0 {
		http.Error(w, "forced failure", status)
		return
	}
	if !found {
		http.Error(w, "unknown servlet", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.Write([]byte(response))
}

// SetResponse replaces the canned envelope for one servlet path.
func (m *MockBCUServer) SetResponse(path, xml string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[path] = xml
	delete(m.statuses, path)
}

// FailWith forces an HTTP status for one servlet path.
func (m *MockBCUServer) FailWith(path string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[path] = status
}

// URL returns the mock server URL
func (m *MockBCUServer) URL() string {
	return m.server.URL
}

// Close closes the mock server
func (m *MockBCUServer) Close() {
	m.server.Close()
}

// MockConfigWithServer returns a test configuration whose three upstream
// endpoints all point at the mock server.
func MockConfigWithServer(baseURL string) *config.Config {
	cfg := MockConfig()
	cfg.CurrenciesURL = baseURL + CurrenciesPath
	cfg.QuotationsURL = baseURL + QuotationsPath
	cfg.LastClosingURL = baseURL + LastClosingPath
	return cfg
}
