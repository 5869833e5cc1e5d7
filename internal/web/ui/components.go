// Package ui contains the server-rendered HTML components for the fetch UI.
package ui

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"polkafetch/internal/core"
)

// Page renders the single-page fetch UI: upload form, column picker,
// progress bar, and results area.
func Page() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, pageHTML)
		return err
	})
}

// PreviewTable renders the uploaded file preview as a table fragment.
func PreviewTable(p *core.FilePreview) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<div class="preview" data-file-id="%s"><h3>%s</h3><p>%d rows</p><table><thead><tr>`,
			templ.EscapeString(p.FileID), templ.EscapeString(p.Name), p.TotalRows); err != nil {
			return err
		}
		for _, col := range p.Columns {
			if _, err := fmt.Fprintf(w, "<th>%s</th>", templ.EscapeString(col)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "</tr></thead><tbody>"); err != nil {
			return err
		}
		for _, row := range p.Rows {
			if _, err := io.WriteString(w, "<tr>"); err != nil {
				return err
			}
			for i := range p.Columns {
				cell := ""
				if i < len(row) {
					cell = row[i]
				}
				if _, err := fmt.Fprintf(w, "<td>%s</td>", templ.EscapeString(cell)); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, "</tr>"); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</tbody></table></div>")
		return err
	})
}

// ResultsTable renders a completed fetch result as a table fragment.
func ResultsTable(result *core.FetchResult) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<div class="results" data-job-id="%s"><table><thead><tr><th>Tx Hash</th><th>Status</th><th>Sender</th><th>From</th><th>To</th><th>Transfer Amount</th><th>Estimated Fee</th><th>Used Fee</th></tr></thead><tbody>`,
			templ.EscapeString(result.JobID)); err != nil {
			return err
		}
		for _, rec := range result.Records {
			if _, err := fmt.Fprintf(w,
				`<tr class="%s"><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
				statusClass(rec.Status),
				templ.EscapeString(rec.TxHash),
				templ.EscapeString(rec.Status),
				templ.EscapeString(rec.Sender),
				templ.EscapeString(rec.From),
				templ.EscapeString(rec.To),
				templ.EscapeString(rec.TransferAmount),
				templ.EscapeString(rec.EstimatedFee),
				templ.EscapeString(rec.UsedFee),
			); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</tbody></table></div>")
		return err
	})
}

// ErrorAlert renders an error fragment for in-page swaps.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="alert alert-error" role="alert"><strong>%s</strong> <span>%s</span> <span class="code">(%s)</span></div>`,
			templ.EscapeString(message),
			templ.EscapeString(action),
			templ.EscapeString(code),
		)
		return err
	})
}

// statusClass maps a row status to a CSS class for row coloring.
func statusClass(status string) string {
	switch {
	case status == core.StatusSuccess:
		return "row-success"
	case status == core.StatusNotFound:
		return "row-notfound"
	default:
		return "row-error"
	}
}

// pageHTML is the static shell. The embedded script drives the flow:
// upload -> pick column -> start job -> follow SSE progress -> load table.
const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Polkadot Transaction Fetcher</title>
<style>
body{font-family:system-ui,sans-serif;max-width:960px;margin:2rem auto;padding:0 1rem;color:#1a1a1a}
h1{font-size:1.4rem}
fieldset{border:1px solid #ddd;border-radius:6px;margin-bottom:1rem;padding:1rem}
label{display:block;margin:.5rem 0 .2rem;font-weight:600}
input[type=file],input[type=password],select{width:100%;padding:.4rem}
button{padding:.5rem 1rem;border:0;border-radius:4px;background:#e6007a;color:#fff;cursor:pointer}
button:disabled{background:#aaa;cursor:default}
table{border-collapse:collapse;width:100%;font-size:.85rem;margin-top:1rem}
th,td{border:1px solid #ddd;padding:.3rem .5rem;text-align:left;word-break:break-all}
progress{width:100%;height:1.2rem}
.alert-error{background:#fde8e8;border:1px solid #f5b5b5;padding:.6rem;border-radius:4px;margin:.5rem 0}
.row-success{background:#f0faf0}
.row-notfound{background:#fdf6e3}
.row-error{background:#fdecec}
.code{color:#888;font-size:.8em}
</style>
</head>
<body>
<h1>Polkadot Transaction Fetcher</h1>
<p>Upload a CSV of extrinsic hashes to fetch fees and transfer details from Subscan.</p>

<fieldset>
<legend>1. Upload</legend>
<label for="file">Hash file (.csv)</label>
<input type="file" id="file" accept=".csv">
<div id="preview"></div>
</fieldset>

<fieldset>
<legend>2. Settings</legend>
<label for="column">Hash column</label>
<select id="column" disabled></select>
<label for="delay">Seconds between requests: <span id="delay-value">0.4</span></label>
<input type="range" id="delay" min="100" max="2000" step="100" value="400">
<label for="apikey">Subscan API key (optional)</label>
<input type="password" id="apikey" autocomplete="off">
</fieldset>

<fieldset>
<legend>3. Fetch</legend>
<button id="start" disabled>Start fetching</button>
<button id="cancel" hidden>Cancel</button>
<progress id="progress" value="0" max="100" hidden></progress>
<div id="status"></div>
</fieldset>

<div id="messages"></div>
<div id="results"></div>
<p><a id="export" hidden>Download results CSV</a></p>

<script>
(function(){
var fileId=null,jobId=null,source=null;
var $=function(id){return document.getElementById(id)};

$('delay').addEventListener('input',function(){
  $('delay-value').textContent=(this.value/1000).toFixed(1);
});

$('file').addEventListener('change',function(){
  if(!this.files.length)return;
  var form=new FormData();
  form.append('file',this.files[0]);
  fetch('/api/files',{method:'POST',body:form})
    .then(function(r){return r.json().then(function(b){if(!r.ok)throw b;return b})})
    .then(function(p){
      fileId=p.fileId;
      var sel=$('column');
      sel.innerHTML='';
      p.columns.forEach(function(c){
        var o=document.createElement('option');o.value=c;o.textContent=c;sel.appendChild(o);
      });
      sel.disabled=false;
      $('start').disabled=false;
      return fetch('/api/files/'+encodeURIComponent(fileId)+'/preview');
    })
    .then(function(r){return r.text()})
    .then(function(html){$('preview').innerHTML=html})
    .catch(showError);
});

$('start').addEventListener('click',function(){
  if(!fileId)return;
  $('messages').innerHTML='';
  fetch('/api/jobs',{
    method:'POST',
    headers:{'Content-Type':'application/json'},
    body:JSON.stringify({
      fileId:fileId,
      hashColumn:$('column').value,
      delayMs:parseInt($('delay').value,10),
      apiKey:$('apikey').value
    })
  })
    .then(function(r){return r.json().then(function(b){if(!r.ok)throw b;return b})})
    .then(function(b){
      jobId=b.jobId;
      $('start').disabled=true;
      $('cancel').hidden=false;
      $('progress').hidden=false;
      follow();
    })
    .catch(showError);
});

$('cancel').addEventListener('click',function(){
  if(!jobId)return;
  fetch('/api/jobs/'+encodeURIComponent(jobId)+'/cancel',{method:'POST'});
});

function follow(){
  source=new EventSource('/api/jobs/'+encodeURIComponent(jobId)+'/progress');
  source.addEventListener('progress',function(e){
    var p=JSON.parse(e.data);
    if(p.totalRows>0){
      $('progress').value=Math.floor(p.currentRow*100/p.totalRows);
      $('status').textContent='Processing '+p.currentRow+'/'+p.totalRows+'...';
    }
  });
  source.addEventListener('complete',function(){
    source.close();
    $('status').textContent='Processing complete';
    $('cancel').hidden=true;
    $('start').disabled=false;
    loadResults();
  });
  source.onerror=function(){source.close()};
}

function loadResults(){
  fetch('/api/jobs/'+encodeURIComponent(jobId)+'/table')
    .then(function(r){return r.text()})
    .then(function(html){
      $('results').innerHTML=html;
      var a=$('export');
      a.href='/api/jobs/'+encodeURIComponent(jobId)+'/export';
      a.hidden=false;
    });
}

function showError(e){
  var msg=(e&&e.message)?e.message+(e.action?'. '+e.action:''):'Request failed';
  var div=document.createElement('div');
  div.className='alert alert-error';
  div.textContent=msg;
  $('messages').appendChild(div);
}
})();
</script>
</body>
</html>
`
