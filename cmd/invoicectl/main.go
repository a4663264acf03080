// invoicectl is the client shell for the on-call invoicing tool. Call entries
// live locally in a JSON data directory; the auth and invoice-header settings
// live on the remote API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/oncalldoc/invoice-api/billing"
	"github.com/oncalldoc/invoice-api/client"
	"github.com/oncalldoc/invoice-api/invoice"
	"github.com/oncalldoc/invoice-api/models"
	"github.com/oncalldoc/invoice-api/storage"
)

const usage = `usage: invoicectl <command> [flags]

local commands:
  add         record a call entry
  list        list call entries
  edit        update a call entry
  delete      delete a call entry (requires -yes)
  invoice     generate a PDF/CSV invoice for a period
  export      export entries and settings as a backup file
  import      restore a backup file
  settings    show or update local settings

remote commands (need -server, and -token for authenticated calls):
  login       log in and print a bearer token
  logout      discard the held token
  me          show the logged-in profile
  set-invoice update remote invoice header settings
  register    create a user (superuser only)
  users       list users (superuser only)
`

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cmd, args := os.Args[1], os.Args[2:]

	var err error
	switch cmd {
	case "add":
		err = cmdAdd(args)
	case "list":
		err = cmdList(args)
	case "edit":
		err = cmdEdit(args)
	case "delete":
		err = cmdDelete(args)
	case "invoice":
		err = cmdInvoice(args)
	case "export":
		err = cmdExport(args)
	case "import":
		err = cmdImport(args)
	case "settings":
		err = cmdSettings(args)
	case "login":
		err = cmdLogin(args)
	case "logout":
		fmt.Println("token discarded; the session no longer exists")
	case "me":
		err = cmdMe(args)
	case "set-invoice":
		err = cmdSetInvoice(args)
	case "register":
		err = cmdRegister(args)
	case "users":
		err = cmdUsers(args)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "invoicectl:", err)
		os.Exit(1)
	}
}

func defaultDataDir() string {
	if dir := os.Getenv("INVOICE_DATA_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".invoicectl"
	}
	return filepath.Join(home, ".invoicectl")
}

func dataDirFlag(fs *flag.FlagSet) *string {
	return fs.String("data", defaultDataDir(), "data directory for local entries and settings")
}

func openStore(dir string) (*storage.Store, error) {
	return storage.New(dir)
}

func cmdAdd(args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	dir := dataDirFlag(fs)
	date := fs.String("date", time.Now().Format("2006-01-02"), "visit date, YYYY-MM-DD")
	from := fs.String("from", "", "origin station (required)")
	callTime := fs.String("time", "", "call time, HH:MM (required)")
	arrival := fs.String("arrival", "", "arrival time, HH:MM")
	callType := fs.String("type", "Routine", "call type")
	hours := fs.Float64("hours", 0, "manual hours (billed at the hourly rate)")
	fixed := fs.Float64("fixed", 0, "fixed charge, e.g. 75 or 30 (overrides hours)")
	fs.Parse(args)

	if *from == "" || *callTime == "" {
		return fmt.Errorf("-from and -time are required")
	}
	if _, err := time.Parse("2006-01-02", *date); err != nil {
		return fmt.Errorf("invalid -date: %v", err)
	}

	s, err := openStore(*dir)
	if err != nil {
		return err
	}
	entries, err := s.LoadEntries()
	if err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	entry := models.CallEntry{
		ID:          uuid.New().String(),
		Date:        *date,
		CallFrom:    *from,
		CallTime:    *callTime,
		ArrivalTime: *arrival,
		CallType:    *callType,
		ManualHours: *hours,
		FixedCharge: *fixed,
		TotalFee:    billing.ComputeFee(*hours, *fixed),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	entries = append(entries, entry)
	if err := s.SaveEntries(entries); err != nil {
		return err
	}

	fmt.Printf("added entry %s: %s %s, fee €%.2f\n", entry.ID, entry.Date, entry.CallFrom, entry.TotalFee)
	return nil
}

func cmdList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	dir := dataDirFlag(fs)
	sortBy := fs.String("sort", "date", "sort by: date, station or fee")
	desc := fs.Bool("desc", false, "sort descending")
	start := fs.String("start", "", "filter: period start, YYYY-MM-DD")
	end := fs.String("end", "", "filter: period end, YYYY-MM-DD")
	fs.Parse(args)

	s, err := openStore(*dir)
	if err != nil {
		return err
	}
	entries, err := s.LoadEntries()
	if err != nil {
		return err
	}

	if *start != "" && *end != "" {
		entries = billing.Filter(entries, *start, *end)
	}
	billing.Sort(entries, billing.SortField(*sortBy), *desc)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tSTATION\tTIME\tTYPE\tHRS/FIXED\tFEE")
	for _, e := range entries {
		charge := fmt.Sprintf("%.1fh", billing.ComputeHours(e.ManualHours, e.FixedCharge))
		if e.HasFixedCharge() {
			charge = fmt.Sprintf("€%.0f", e.FixedCharge)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t€%.2f\n",
			shortID(e.ID), e.Date, e.CallFrom, e.CallTime, e.CallType, charge, e.TotalFee)
	}
	w.Flush()

	if *start != "" && *end != "" {
		sum := billing.Aggregate(entries, *start, *end)
		fmt.Printf("\n%d calls, %.2f hours, total €%.2f (avg €%.2f/call)\n",
			sum.Count, sum.TotalHours, sum.TotalAmount, sum.AveragePerCall)
	}
	return nil
}

func cmdEdit(args []string) error {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	dir := dataDirFlag(fs)
	id := fs.String("id", "", "entry id (or unique prefix, required)")
	date := fs.String("date", "", "new visit date")
	from := fs.String("from", "", "new origin station")
	callTime := fs.String("time", "", "new call time")
	arrival := fs.String("arrival", "", "new arrival time")
	callType := fs.String("type", "", "new call type")
	hours := fs.Float64("hours", -1, "new manual hours (0 clears)")
	fixed := fs.Float64("fixed", -1, "new fixed charge (0 clears)")
	fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("-id is required")
	}

	s, err := openStore(*dir)
	if err != nil {
		return err
	}
	entries, err := s.LoadEntries()
	if err != nil {
		return err
	}

	idx, err := findEntry(entries, *id)
	if err != nil {
		return err
	}
	e := &entries[idx]

	if *date != "" {
		e.Date = *date
	}
	if *from != "" {
		e.CallFrom = *from
	}
	if *callTime != "" {
		e.CallTime = *callTime
	}
	if *arrival != "" {
		e.ArrivalTime = *arrival
	}
	if *callType != "" {
		e.CallType = *callType
	}
	if *hours >= 0 {
		e.ManualHours = *hours
	}
	if *fixed >= 0 {
		e.FixedCharge = *fixed
	}
	// pricing inputs changed, so the fee is recomputed at today's rules
	if *hours >= 0 || *fixed >= 0 {
		e.TotalFee = billing.ComputeFee(e.ManualHours, e.FixedCharge)
	}
	e.UpdatedAt = time.Now().UTC().Format(time.RFC3339)

	if err := s.SaveEntries(entries); err != nil {
		return err
	}
	fmt.Printf("updated entry %s, fee €%.2f\n", shortID(e.ID), e.TotalFee)
	return nil
}

func cmdDelete(args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	dir := dataDirFlag(fs)
	id := fs.String("id", "", "entry id (or unique prefix, required)")
	yes := fs.Bool("yes", false, "confirm deletion")
	fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("-id is required")
	}
	if !*yes {
		return fmt.Errorf("refusing to delete without -yes")
	}

	s, err := openStore(*dir)
	if err != nil {
		return err
	}
	entries, err := s.LoadEntries()
	if err != nil {
		return err
	}

	idx, err := findEntry(entries, *id)
	if err != nil {
		return err
	}
	removed := entries[idx]
	entries = append(entries[:idx], entries[idx+1:]...)

	if err := s.SaveEntries(entries); err != nil {
		return err
	}
	fmt.Printf("deleted entry %s (%s %s)\n", shortID(removed.ID), removed.Date, removed.CallFrom)
	return nil
}

func cmdInvoice(args []string) error {
	fs := flag.NewFlagSet("invoice", flag.ExitOnError)
	dir := dataDirFlag(fs)
	start := fs.String("start", "", "period start, YYYY-MM-DD (required)")
	end := fs.String("end", "", "period end, YYYY-MM-DD (required)")
	pdfOut := fs.String("pdf", "", "PDF output path (default invoice-<today>.pdf)")
	csvOut := fs.String("csv", "", "CSV output path (default doctor-calls-<today>.csv)")
	noPDF := fs.Bool("no-pdf", false, "skip the PDF artifact")
	noCSV := fs.Bool("no-csv", false, "skip the CSV artifact")
	company := fs.String("company", "", "company name for the header")
	tagline := fs.String("tagline", "", "company tagline")
	taxInfo := fs.String("tax", "", "tax registration line")
	invoiceTo := fs.String("invoice-to", "", "invoice recipient")
	invoiceNumber := fs.String("invoice-number", "", "invoice number")
	issuedBy := fs.String("issued-by", "", "issued-by line")
	fs.Parse(args)

	if *start == "" || *end == "" {
		return fmt.Errorf("-start and -end are required")
	}

	s, err := openStore(*dir)
	if err != nil {
		return err
	}
	entries, err := s.LoadEntries()
	if err != nil {
		return err
	}
	settings, err := s.LoadSettings()
	if err != nil {
		return err
	}

	filtered := billing.Filter(entries, *start, *end)
	billing.Sort(filtered, billing.SortByDate, false)
	if len(filtered) == 0 {
		return fmt.Errorf("no entries between %s and %s", *start, *end)
	}

	data := invoice.Data{
		Entries: filtered,
		Period:  invoice.Period{Start: *start, End: *end},
		Header: invoice.Header{
			CompanyName:   *company,
			Tagline:       *tagline,
			TaxInfo:       *taxInfo,
			InvoiceTo:     *invoiceTo,
			InvoiceNumber: *invoiceNumber,
			IssuedBy:      *issuedBy,
			Doctor:        settings.DoctorInfo,
		},
	}

	if !*noPDF {
		path := *pdfOut
		if path == "" {
			path = invoice.FileName("invoice", "pdf")
		}
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := invoice.RenderPDF(f, data); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Println("wrote", path)
	}

	if !*noCSV {
		path := *csvOut
		if path == "" {
			path = invoice.FileName("doctor-calls", "csv")
		}
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := invoice.WriteCSV(f, filtered); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Println("wrote", path)
	}

	sum := billing.Aggregate(filtered, *start, *end)
	fmt.Printf("%d calls, %.2f hours, total €%.2f\n", sum.Count, sum.TotalHours, sum.TotalAmount)
	return nil
}

func cmdExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	dir := dataDirFlag(fs)
	out := fs.String("out", "", "backup output path (default backup-<today>.json)")
	fs.Parse(args)

	s, err := openStore(*dir)
	if err != nil {
		return err
	}
	data, err := s.Export()
	if err != nil {
		return err
	}

	path := *out
	if path == "" {
		path = invoice.FileName("backup", "json")
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	fmt.Println("wrote", path)
	return nil
}

func cmdImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	dir := dataDirFlag(fs)
	file := fs.String("file", "", "backup file to restore (required)")
	fs.Parse(args)

	if *file == "" {
		return fmt.Errorf("-file is required")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		return err
	}

	s, err := openStore(*dir)
	if err != nil {
		return err
	}
	if err := s.Import(data); err != nil {
		return err
	}
	fmt.Println("backup restored")
	return nil
}

func cmdSettings(args []string) error {
	fs := flag.NewFlagSet("settings", flag.ExitOnError)
	dir := dataDirFlag(fs)
	rate := fs.Float64("rate", -1, "hourly rate")
	name := fs.String("name", "", "doctor name")
	address := fs.String("address", "", "doctor address")
	phone := fs.String("phone", "", "doctor phone")
	email := fs.String("email", "", "doctor email")
	fs.Parse(args)

	s, err := openStore(*dir)
	if err != nil {
		return err
	}
	settings, err := s.LoadSettings()
	if err != nil {
		return err
	}

	changed := false
	if *rate >= 0 {
		settings.HourlyRate = *rate
		changed = true
	}
	if *name != "" {
		settings.DoctorInfo.Name = *name
		changed = true
	}
	if *address != "" {
		settings.DoctorInfo.Address = *address
		changed = true
	}
	if *phone != "" {
		settings.DoctorInfo.Phone = *phone
		changed = true
	}
	if *email != "" {
		settings.DoctorInfo.Email = *email
		changed = true
	}

	if changed {
		if err := s.SaveSettings(settings); err != nil {
			return err
		}
		fmt.Println("settings saved")
	}

	fmt.Printf("hourly rate: €%.2f\n", settings.HourlyRate)
	fmt.Printf("doctor: %s, %s, %s, %s\n",
		settings.DoctorInfo.Name, settings.DoctorInfo.Address,
		settings.DoctorInfo.Phone, settings.DoctorInfo.Email)
	return nil
}

func serverFlag(fs *flag.FlagSet) *string {
	def := os.Getenv("INVOICE_API_URL")
	if def == "" {
		def = "http://localhost:4000"
	}
	return fs.String("server", def, "invoice API base URL")
}

func tokenFlag(fs *flag.FlagSet) *string {
	return fs.String("token", os.Getenv("INVOICE_API_TOKEN"), "bearer token from `invoicectl login`")
}

func session(token string) (*client.Session, error) {
	if token == "" {
		return nil, fmt.Errorf("no token; run `invoicectl login` and pass -token or set INVOICE_API_TOKEN")
	}
	return &client.Session{Token: token}, nil
}

func cmdLogin(args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	server := serverFlag(fs)
	username := fs.String("username", "", "username (required)")
	password := fs.String("password", "", "password (required)")
	fs.Parse(args)

	if *username == "" || *password == "" {
		return fmt.Errorf("-username and -password are required")
	}

	c := client.New(*server)
	sess, err := c.Login(context.Background(), *username, *password)
	if err != nil {
		return err
	}

	fmt.Printf("logged in as %s (%s)\n", sess.User.Username, sess.User.Role)
	fmt.Println(sess.Token)
	return nil
}

func cmdMe(args []string) error {
	fs := flag.NewFlagSet("me", flag.ExitOnError)
	server := serverFlag(fs)
	token := tokenFlag(fs)
	fs.Parse(args)

	sess, err := session(*token)
	if err != nil {
		return err
	}

	c := client.New(*server)
	user, err := c.Me(context.Background(), sess)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s)\n", user.Username, user.Role)
	fmt.Printf("company: %s\n", user.CompanyName)
	fmt.Printf("invoice no: %s, invoice to: %s\n", user.InvoiceNumber, user.InvoiceToInfo)
	fmt.Printf("rate €%.2f, per hour €%.2f, per call €%.2f\n", user.Rate, user.PerHourRate, user.PerCallRate)
	return nil
}

func cmdSetInvoice(args []string) error {
	fs := flag.NewFlagSet("set-invoice", flag.ExitOnError)
	server := serverFlag(fs)
	token := tokenFlag(fs)
	company := fs.String("company", "", "company name")
	invoiceNumber := fs.String("invoice-number", "", "invoice number")
	invoiceTo := fs.String("invoice-to", "", "invoice recipient info")
	perHour := fs.Float64("per-hour", -1, "per-hour rate")
	perCall := fs.Float64("per-call", -1, "per-call rate")
	clear := fs.String("clear", "", "comma-separated text fields to clear: company,invoice-number,invoice-to")
	fs.Parse(args)

	sess, err := session(*token)
	if err != nil {
		return err
	}

	var update client.InvoiceSettingsUpdate
	if *company != "" {
		update.CompanyName = company
	}
	if *invoiceNumber != "" {
		update.InvoiceNumber = invoiceNumber
	}
	if *invoiceTo != "" {
		update.InvoiceToInfo = invoiceTo
	}
	if *perHour >= 0 {
		update.PerHourRate = perHour
	}
	if *perCall >= 0 {
		update.PerCallRate = perCall
	}
	// clearing a field means sending it explicitly empty
	empty := ""
	for _, field := range strings.Split(*clear, ",") {
		switch strings.TrimSpace(field) {
		case "company":
			update.CompanyName = &empty
		case "invoice-number":
			update.InvoiceNumber = &empty
		case "invoice-to":
			update.InvoiceToInfo = &empty
		}
	}

	c := client.New(*server)
	user, err := c.UpdateInvoiceSettings(context.Background(), sess, update)
	if err != nil {
		return err
	}

	fmt.Println("invoice settings updated")
	fmt.Printf("company: %q, invoice no: %q, invoice to: %q\n",
		user.CompanyName, user.InvoiceNumber, user.InvoiceToInfo)
	return nil
}

func cmdRegister(args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	server := serverFlag(fs)
	token := tokenFlag(fs)
	username := fs.String("username", "", "new username (required)")
	password := fs.String("password", "", "new password (required)")
	role := fs.String("role", "user", "role: user or superuser")
	rate := fs.Float64("rate", 0, "billing rate")
	fs.Parse(args)

	if *username == "" || *password == "" {
		return fmt.Errorf("-username and -password are required")
	}

	sess, err := session(*token)
	if err != nil {
		return err
	}

	c := client.New(*server)
	user, err := c.Register(context.Background(), sess, *username, *password, models.Role(*role), *rate)
	if err != nil {
		return err
	}

	fmt.Printf("created user %s (%s)\n", user.Username, user.Role)
	return nil
}

func cmdUsers(args []string) error {
	fs := flag.NewFlagSet("users", flag.ExitOnError)
	server := serverFlag(fs)
	token := tokenFlag(fs)
	fs.Parse(args)

	sess, err := session(*token)
	if err != nil {
		return err
	}

	c := client.New(*server)
	users, err := c.ListUsers(context.Background(), sess)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tROLE\tRATE")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t€%.2f\n", u.ID, u.Username, u.Role, u.Rate)
	}
	return w.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func findEntry(entries []models.CallEntry, id string) (int, error) {
	match := -1
	for i, e := range entries {
		if e.ID == id {
			return i, nil
		}
		if strings.HasPrefix(e.ID, id) {
			if match >= 0 {
				return -1, fmt.Errorf("id prefix %q is ambiguous", id)
			}
			match = i
		}
	}
	if match < 0 {
		return -1, fmt.Errorf("no entry with id %q", id)
	}
	return match, nil
}
